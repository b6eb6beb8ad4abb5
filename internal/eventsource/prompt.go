package eventsource

import (
	"fmt"
	"strings"

	"github.com/machi-events/eventfinder/internal/model"
)

const eventSchema = `{"id": string, "title": {"ja": string, "en": string}, "description": {"ja": string, "en": string}, ` +
	`"startDate": "YYYY-MM-DD", "endDate": "YYYY-MM-DD" or null, "location": string, "district": string, "imageUrl": string}`

const systemPrompt = "You are an event listings service for Tokyo. " +
	"Reply with a single JSON object and nothing else. Use only the keys described. " +
	"Event ids must be stable, lowercase and URL safe."

func searchPrompt(q model.EventQuery) []chatMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "List public events in Tokyo held between %s and %s inclusive", q.DateFrom, q.DateTo)
	if q.District != nil {
		fmt.Fprintf(&b, " in %s (%s), district value %q", q.District.Name.En, q.District.Name.Ja, q.District.Value)
	}
	b.WriteString(".\nRespond as {\"events\": [EVENT, ...]} where EVENT is ")
	b.WriteString(eventSchema)
	b.WriteString(". Use an empty array when nothing matches.")
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func lookupPrompt(id string) []chatMessage {
	user := fmt.Sprintf("Return the event whose id is %q as {\"event\": EVENT} where EVENT is %s. "+
		"If you do not know this event respond with {\"event\": null}.", id, eventSchema)
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}
