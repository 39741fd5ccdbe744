// Package timeweather assembles the Time & Weather assistant: its
// instructions, its local clock tools and the demo conversation script.
// Remote user and weather capabilities come from MCP servers configured in
// the harness.
package timeweather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool/function"
)

// Instructions is the system prompt for the assistant. Location memory is
// deliberately transcript-only: the model recalls and updates the user's
// location from the conversation, not from dedicated state.
const Instructions = `You are a helpful Time & Weather assistant.

## Capabilities:
1. **Remember Context**: Remember the user's location from our conversation.
2. **Location Tracking**: When a user says "I am in [city]", remember this as their current location.
3. **Time Information**: Tell users the current time in their location.
4. **Weather Information**: Provide weather for supported locations (Seattle, New York, London, Berlin, Tokyo, Sydney).

## Guidelines:
- When the user says "here" or "my location", use the location they mentioned earlier.
- If the user says they "moved", update their current location.
- If asked to recall their location, tell them where they said they are.
- Be concise and friendly.`

// DemoQueries is the scripted conversation exercised by demo mode. The
// sequence walks through stating a location, referring back to it with
// "here", overriding it and recalling it.
var DemoQueries = []string{
	"I am currently in London",
	"What is the weather now here?",
	"What time is it for me right now?",
	"I moved to Berlin, what is the weather like today?",
	"Can you remind me where I said I am based?",
}

// cityTimezones maps well-known city names to IANA timezone identifiers.
var cityTimezones = map[string]string{
	"london":   "Europe/London",
	"berlin":   "Europe/Berlin",
	"new york": "America/New_York",
	"tokyo":    "Asia/Tokyo",
	"sydney":   "Australia/Sydney",
	"seattle":  "America/Los_Angeles",
	"paris":    "Europe/Paris",
}

type timezoneForCityArgs struct {
	City string `json:"city" jsonschema:"description=City name like 'London', 'Berlin', 'New York', 'Tokyo'"`
}

type timeForTimezoneArgs struct {
	TimezoneName string `json:"timezone_name" jsonschema:"description=IANA timezone name like 'Europe/London', 'America/New_York', 'Europe/Berlin'"`
}

// LocalTools returns the in-process clock tools. They sit behind the same
// callable interface as the remote MCP tools, so the agent never knows a
// call stayed in-process.
func LocalTools() []tool.CallableTool {
	return []tool.CallableTool{
		function.New(timezoneForCity,
			function.WithName("get_timezone_for_city"),
			function.WithDescription("Get the IANA timezone for a well-known city."),
		),
		function.New(timeForTimezone,
			function.WithName("get_current_time_for_timezone"),
			function.WithDescription("Get the current time for a given IANA timezone."),
		),
	}
}

func timezoneForCity(ctx context.Context, args timezoneForCityArgs) (string, error) {
	city := strings.ToLower(strings.TrimSpace(args.City))
	zone, ok := cityTimezones[city]
	if !ok {
		return fmt.Sprintf("Unknown city %q. Try a major city name.", args.City), nil
	}
	return fmt.Sprintf("The timezone for %s is %s.", args.City, zone), nil
}

func timeForTimezone(ctx context.Context, args timeForTimezoneArgs) (string, error) {
	location, err := time.LoadLocation(args.TimezoneName)
	if err != nil {
		return fmt.Sprintf("Could not determine time for timezone %q: %v", args.TimezoneName, err), nil
	}
	now := time.Now().In(location)
	return fmt.Sprintf("The current time in %s is %s on %s.",
		args.TimezoneName,
		now.Format("03:04:05 PM"),
		now.Format("Monday, January 02, 2006"),
	), nil
}
