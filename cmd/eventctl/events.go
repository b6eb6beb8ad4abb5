package main

import (
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	districtsCmd := &cobra.Command{
		Use:   "districts [VALUE]",
		Short: "List districts, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/districts"
			if len(args) == 1 {
				path += "/" + url.PathEscape(args[0])
			}
			return getAndPrint(newClient(apiFlag, tokenFlag).R(), path, cmd)
		},
	}

	eventsCmd := &cobra.Command{Use: "events", Short: "Event operations"}

	var from, to, district string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search events in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient(apiFlag, tokenFlag).R().
				SetQueryParam("dateFrom", from).
				SetQueryParam("dateTo", to)
			if district != "" {
				req.SetQueryParam("district", district)
			}
			return getAndPrint(req, "/api/events", cmd)
		},
	}
	searchCmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD (required)")
	searchCmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD (required)")
	searchCmd.Flags().StringVarP(&district, "district", "d", "", "District value, e.g. sumida")
	_ = searchCmd.MarkFlagRequired("from")
	_ = searchCmd.MarkFlagRequired("to")

	getCmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get an event by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(newClient(apiFlag, tokenFlag).R(), "/api/events/"+url.PathEscape(args[0]), cmd)
		},
	}
	eventsCmd.AddCommand(searchCmd, getCmd)

	rootCmd.AddCommand(districtsCmd, eventsCmd)
}

func getAndPrint(req *resty.Request, path string, cmd *cobra.Command) error {
	resp, err := call(req, resty.MethodGet, path)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp.Body())
}
