package main

import (
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	favCmd := &cobra.Command{Use: "favorites", Short: "Favorite operations (requires --token)"}

	favCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorited events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(newClient(apiFlag, tokenFlag).R(), "/api/favorites", cmd)
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "add EVENT_ID",
		Short: "Add an event to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return favoriteCall(resty.MethodPost, args[0], cmd)
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "remove EVENT_ID",
		Short: "Remove an event from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return favoriteCall(resty.MethodDelete, args[0], cmd)
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "check EVENT_ID",
		Short: "Report whether an event is a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(newClient(apiFlag, tokenFlag).R(), "/api/favorites/check/"+url.PathEscape(args[0]), cmd)
		},
	})

	rootCmd.AddCommand(favCmd)
}

func favoriteCall(method, eventID string, cmd *cobra.Command) error {
	resp, err := call(newClient(apiFlag, tokenFlag).R(), method, "/api/favorites/"+url.PathEscape(eventID))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp.Body())
}
