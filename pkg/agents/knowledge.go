package agents

import (
	"context"
	"strings"
)

// KnowledgeAgent answers general outdoor questions from a fixed topic table.
// Responses are terminal: no handoff, no actions.
type KnowledgeAgent struct{}

// Topics are checked in this fixed order; the first keyword hit wins.
var knowledgeTopics = []struct {
	keyword string
	answer  string
}{
	{"hiking", "Hiking is one of the best ways to experience the outdoors. Start with trails rated for your fitness level, carry more water than you think you need, and check trail conditions before heading out. For day hikes, the ten essentials (navigation, sun protection, insulation, light, first aid, fire, repair kit, food, water, shelter) are a good packing baseline."},
	{"camping", "For camping, your three big decisions are where (established campground vs. dispersed), shelter (tent, hammock, or vehicle), and season. Reserve popular campgrounds well in advance, and always check fire restrictions for your dates. A good sleeping pad matters more than most people expect."},
	{"national park", "National parks protect some of the most spectacular landscapes in the country. Entrance passes are per-vehicle at most parks; the annual America the Beautiful pass pays for itself in three visits. Popular parks like Yosemite and Zion use timed-entry or shuttle systems in peak season, so plan ahead."},
	{"gear", "Good gear doesn't need to be expensive. Prioritize footwear and a properly fitted pack, then layering (base, insulation, shell). Rent or borrow big-ticket items like tents and sleeping bags until you know what you like. Cotton is a poor choice for anything worn next to skin on the trail."},
	{"safety", "Outdoor safety comes down to preparation: tell someone your plan, check the weather, know your limits, and carry navigation you don't need batteries for. Wildlife encounters are rare if you store food properly and make noise on blind corners. Turn around before you're tired, not after."},
	{"weather", "Mountain weather changes fast. Check a point forecast for your destination (not the nearest town), watch for afternoon thunderstorms in summer, and remember temperatures drop roughly 3-5°F per 1000 feet of elevation gain. When in doubt, start early."},
}

const knowledgeDefault = "I can help with questions about hiking, camping, national parks, gear, safety, and weather. What would you like to know about planning your next adventure?"

func (a *KnowledgeAgent) Handle(ctx context.Context, req *Request) (*Response, error) {
	query := ""
	if msg, ok := req.LatestUserMessage(); ok {
		query = msg.Content
	}
	lower := strings.ToLower(query)

	answer := knowledgeDefault
	for _, topic := range knowledgeTopics {
		if strings.Contains(lower, topic.keyword) {
			answer = topic.answer
			break
		}
	}

	return &Response{
		Message: NewAgentMessage(RoleKnowledge, answer),
	}, nil
}
