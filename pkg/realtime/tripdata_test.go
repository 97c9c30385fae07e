package realtime_test

import (
	"strings"
	"testing"

	"github.com/trailmind/trailmind/pkg/realtime"
)

func TestExtractTripDataFencedBlock(t *testing.T) {
	text := "Here are some ideas for you!\n```json\n{\"trip\": [{\"title\": \"Yosemite Weekend\", \"destination\": \"Yosemite\"}]}\n```\nLet me know what you think."

	data, cleaned, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected trip data")
	}
	if len(data.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(data.Trips))
	}
	if got := data.Trips[0]["title"]; got != "Yosemite Weekend" {
		t.Errorf("title = %v, want Yosemite Weekend", got)
	}
	if strings.Contains(cleaned, "{") {
		t.Errorf("cleaned text still contains JSON: %q", cleaned)
	}
	if !strings.Contains(cleaned, "Here are some ideas") {
		t.Errorf("cleaned text lost prose: %q", cleaned)
	}
}

func TestExtractTripDataSingleTripObject(t *testing.T) {
	text := `Sure thing. {"trip": {"title": "Tahoe Loop", "destination": "Lake Tahoe"}}`

	data, _, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected trip data")
	}
	if len(data.Trips) != 1 {
		t.Fatalf("trips = %d, want 1 (single object wrapped as list)", len(data.Trips))
	}
	if got := data.Trips[0]["destination"]; got != "Lake Tahoe" {
		t.Errorf("destination = %v, want Lake Tahoe", got)
	}
}

func TestExtractTripDataDestinationOnly(t *testing.T) {
	text := `Here you go: {"destination": "Tahoe", "duration": "3 days"}`

	data, cleaned, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected trip data")
	}
	if len(data.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(data.Trips))
	}
	if got := data.Trips[0]["destination"]; got != "Tahoe" {
		t.Errorf("destination = %v, want Tahoe", got)
	}
	if cleaned != "Here you go:" {
		t.Errorf("cleaned = %q", cleaned)
	}
}

func TestExtractTripDataSingleTripShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  string
		want string
	}{
		{
			name: "title only",
			text: `Here is an idea: {"title": "Tahoe Loop", "days": 3} for the weekend.`,
			key:  "title",
			want: "Tahoe Loop",
		},
		{
			name: "location only",
			text: `How about this? {"location": "Lake Tahoe", "activity": "kayaking"}`,
			key:  "location",
			want: "Lake Tahoe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, cleaned, ok := realtime.ExtractTripData(tt.text)
			if !ok {
				t.Fatal("expected trip data")
			}
			if len(data.Trips) != 1 {
				t.Fatalf("trips = %d, want 1 (object wrapped as list)", len(data.Trips))
			}
			if got := data.Trips[0][tt.key]; got != tt.want {
				t.Errorf("%s = %v, want %s", tt.key, got, tt.want)
			}
			if strings.Contains(cleaned, "{") {
				t.Errorf("cleaned text still contains JSON: %q", cleaned)
			}
		})
	}
}

func TestExtractTripDataBareTripArray(t *testing.T) {
	text := `Options below. "trip": [{"title": "Coast Walk", "destination": "Big Sur"}] Enjoy!`

	data, _, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected trip data")
	}
	if got := data.Trips[0]["title"]; got != "Coast Walk" {
		t.Errorf("title = %v, want Coast Walk", got)
	}
}

func TestExtractTripDataRepairsMalformedJSON(t *testing.T) {
	// Trailing comma and unquoted key, the kind of sloppiness streaming
	// models produce.
	text := "```json\n{\"trip\": [{title: \"Zion Trip\", \"destination\": \"Zion\",}]}\n```"

	data, _, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected repaired trip data")
	}
	if got := data.Trips[0]["destination"]; got != "Zion" {
		t.Errorf("destination = %v, want Zion", got)
	}
}

func TestExtractTripDataNoJSON(t *testing.T) {
	text := "The best time to visit Yosemite is late spring."

	_, cleaned, ok := realtime.ExtractTripData(text)
	if ok {
		t.Fatal("expected no trip data")
	}
	if cleaned != text {
		t.Errorf("text was modified: %q", cleaned)
	}
}

func TestExtractTripDataIgnoresUnrelatedJSON(t *testing.T) {
	text := `Weather data: {"temperature": 72, "unit": "F"} looks good.`

	_, cleaned, ok := realtime.ExtractTripData(text)
	if ok {
		t.Fatal("unrelated JSON should not parse as trip data")
	}
	if cleaned != text {
		t.Errorf("text was modified: %q", cleaned)
	}
}

func TestExtractTripDataMultipleTrips(t *testing.T) {
	text := `{"trip": [{"title": "A", "destination": "X"}, {"title": "B", "destination": "Y"}]}`

	data, cleaned, ok := realtime.ExtractTripData(text)
	if !ok {
		t.Fatal("expected trip data")
	}
	if len(data.Trips) != 2 {
		t.Fatalf("trips = %d, want 2", len(data.Trips))
	}
	if cleaned != "" {
		t.Errorf("cleaned = %q, want empty", cleaned)
	}
}
