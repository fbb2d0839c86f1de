package panels

import (
	"time"

	"github.com/garunski/pulse/pkg/pulse/stream"
)

const (
	PanelAlerts = "alerts"
	PanelBanner = "banner"
	PanelFeed   = "feed"
	PanelTriage = "triage"
)

// Defaults returns the dashboard's panels. The numbers mirror the
// dashboard's observed behaviour and are meant to be overridden. The
// triage queue never refreshed on its own, so its interval is a
// placeholder and it does not start automatically.
func Defaults() Catalogue {
	return Catalogue{
		Panels: []Panel{
			{
				Name:      PanelAlerts,
				Title:     "Live Alerts & Notifications",
				Autostart: true,
				Stream: stream.Config{
					MinInterval:     20 * time.Second,
					MaxInterval:     20 * time.Second,
					Capacity:        10,
					EmitProbability: 0.3,
					Categories: []stream.Category{
						stream.CategorySpike, stream.CategoryThreshold,
						stream.CategoryAgent, stream.CategoryChannel,
					},
					Severities: []stream.Severity{
						stream.SeverityLow, stream.SeverityMedium,
						stream.SeverityHigh, stream.SeverityCritical,
					},
					ActionableProbability: 0.5,
					Sources:               []string{"Email Support", "Live Chat", "Ticket System"},
					Templates: map[stream.Category]stream.Template{
						stream.CategorySpike: {
							Title:   "Negative Sentiment Spike Detected",
							Message: "Increase in negative sentiment in the last hour across email support",
						},
						stream.CategoryThreshold: {
							Title:   "Agent Performance Alert",
							Message: "Agent sentiment score dropped below 80% threshold",
						},
						stream.CategoryChannel: {
							Title:   "Chat Response Time Impact",
							Message: "Longer response times correlating with increased frustration",
						},
					},
				},
				Initial: []stream.Seed{
					{
						Age:        5 * time.Minute,
						Category:   stream.CategorySpike,
						Severity:   stream.SeverityCritical,
						Message:    "45% increase in negative sentiment in the last hour across email support",
						Source:     "Email Support",
						Actionable: true,
					},
					{
						Age:        15 * time.Minute,
						Category:   stream.CategoryThreshold,
						Severity:   stream.SeverityHigh,
						Message:    "David Wilson's sentiment score dropped below 80% threshold",
						Source:     "Agent Monitoring",
						Actionable: true,
					},
					{
						Age:      30 * time.Minute,
						Category: stream.CategoryChannel,
						Severity: stream.SeverityMedium,
						Source:   "Live Chat",
					},
				},
			},
			{
				Name:      PanelBanner,
				Title:     "Live Alert Banner",
				Autostart: true,
				Stream: stream.Config{
					InitialDelay:         3 * time.Second,
					MinInterval:          15 * time.Second,
					MaxInterval:          30 * time.Second,
					Capacity:             3,
					EmitProbability:      0.7,
					Categories:           []stream.Category{stream.CategorySpike, stream.CategoryAgent, "volume"},
					Severities:           []stream.Severity{stream.SeverityInfo, stream.SeverityWarning, stream.SeverityCritical},
					AutoExpireSeverities: []stream.Severity{stream.SeverityInfo},
					ExpireAfter:          8 * time.Second,
					// Each kind of banner alert always has the same severity and source.
					Templates: map[stream.Category]stream.Template{
						stream.CategorySpike: {
							Title:    "Critical Sentiment Spike",
							Message:  "Negative sentiment increased by 45% in the last 10 minutes. Immediate attention required.",
							Severity: stream.SeverityCritical,
							Source:   "Live Chat Channel",
						},
						stream.CategoryAgent: {
							Title:    "Agent Performance Alert",
							Message:  "Agent Sarah's sentiment score dropped below threshold (2.1/5.0).",
							Severity: stream.SeverityWarning,
							Source:   "Agent Monitor",
						},
						"volume": {
							Title:    "High Volume Detected",
							Message:  "Incoming message volume is 3x higher than usual. Consider adding support staff.",
							Severity: stream.SeverityInfo,
							Source:   "System Monitor",
						},
					},
				},
			},
			{
				Name:      PanelFeed,
				Title:     "Live Sentiment Feed",
				Autostart: true,
				Stream: stream.Config{
					MinInterval: 15 * time.Second,
					MaxInterval: 15 * time.Second,
					Capacity:    20,
					Categories:  []stream.Category{"positive", "negative", "neutral", "mixed"},
					Severities:  []stream.Severity{stream.SeverityInfo},
					Templates: map[stream.Category]stream.Template{
						"positive": {Title: "Customer message", Message: "Just received another customer message..."},
						"negative": {Title: "Customer message", Message: "Just received another customer message..."},
						"neutral":  {Title: "Customer message", Message: "Just received another customer message..."},
						"mixed":    {Title: "Customer message", Message: "Just received another customer message..."},
					},
					Attributes: map[string][]string{
						"emotion": {"joy", "anger", "confusion", "satisfaction", "disappointment"},
						"channel": {"email", "chat", "ticket"},
						"agent":   {"Sarah Chen", "Mike Johnson", "Lisa Wang", "David Wilson"},
					},
				},
				Initial: []stream.Seed{
					feedSeed(2*time.Minute, "positive", "Thank you so much for the quick resolution! This was exactly what I needed.",
						"joy", "email", "Sarah Chen", "John Smith", "0.95"),
					feedSeed(5*time.Minute, "negative", "I'm extremely frustrated with this ongoing issue. This is the third time I'm contacting support.",
						"anger", "chat", "Mike Johnson", "Emma Davis", "0.89"),
					feedSeed(8*time.Minute, "neutral", "I'm not sure if I understand the process. Could you explain it again?",
						"confusion", "ticket", "Lisa Wang", "Robert Brown", "0.76"),
					feedSeed(12*time.Minute, "mixed", "The service is okay, but I expected better response times.",
						"disappointment", "email", "David Wilson", "Mary Johnson", "0.82"),
				},
			},
			{
				Name:      PanelTriage,
				Title:     "Priority Triage Queue",
				Autostart: false,
				Stream: stream.Config{
					MinInterval: 25 * time.Second,
					MaxInterval: 45 * time.Second,
					Capacity:    10,
					Categories:  []stream.Category{"email", "chat", "ticket"},
					Severities: []stream.Severity{
						stream.SeverityLow, stream.SeverityMedium,
						stream.SeverityHigh, stream.SeverityUrgent,
					},
					Templates: map[stream.Category]stream.Template{
						"email":  {Title: "Payment failed multiple times", Message: "This is the third time my payment has failed."},
						"chat":   {Title: "Account locked after update", Message: "I cannot log in since the latest update."},
						"ticket": {Title: "Feature request follow-up", Message: "Any news on the export feature?"},
					},
					Attributes: map[string][]string{
						"sentiment": {"positive", "negative", "neutral", "mixed"},
						"emotion":   {"anger", "frustration", "confusion", "satisfaction"},
					},
				},
				// Ages are the queue wait times.
				Initial: []stream.Seed{
					triageSeed(45*time.Minute, "email", stream.SeverityUrgent, "Payment failed multiple times - urgent help needed",
						"This is the third time my payment has failed. I need this resolved immediately!",
						map[string]string{"customer": "Emma Davis", "sentiment": "negative", "emotion": "anger", "urgency": "95", "tags": "payment,escalation,vip"}),
					triageSeed(23*time.Minute, "chat", stream.SeverityHigh, "Account locked after update",
						"I can't access my account since the update. This is affecting my work.",
						map[string]string{"customer": "John Smith", "agent": "Sarah Chen", "sentiment": "negative", "emotion": "frustration", "urgency": "87", "tags": "account,technical"}),
					triageSeed(120*time.Minute, "ticket", stream.SeverityMedium, "Feature request and feedback",
						"I love the new interface but some features are hard to find.",
						map[string]string{"customer": "Lisa Johnson", "sentiment": "mixed", "emotion": "confusion", "urgency": "62", "tags": "feedback,feature-request"}),
					triageSeed(67*time.Minute, "email", stream.SeverityHigh, "Billing inquiry - overcharge",
						"I was charged twice for the same service. Please refund the duplicate charge.",
						map[string]string{"customer": "Robert Brown", "sentiment": "negative", "emotion": "disappointment", "urgency": "78", "tags": "billing,refund"}),
					triageSeed(5*time.Minute, "chat", stream.SeverityLow, "Thank you for excellent service",
						"Your team helped me solve the issue perfectly. Great service!",
						map[string]string{"customer": "Mary Wilson", "agent": "Mike Johnson", "sentiment": "positive", "emotion": "satisfaction", "urgency": "25", "tags": "positive,resolved"}),
				},
			},
		},
	}
}

func feedSeed(age time.Duration, sentiment stream.Category, message, emotion, channel, agent, customer, confidence string) stream.Seed {
	return stream.Seed{
		Age:      age,
		Category: sentiment,
		Severity: stream.SeverityInfo,
		Message:  message,
		Attributes: map[string]string{
			"emotion":    emotion,
			"channel":    channel,
			"agent":      agent,
			"customer":   customer,
			"confidence": confidence,
		},
	}
}

func triageSeed(age time.Duration, channel stream.Category, priority stream.Severity, subject, message string, attrs map[string]string) stream.Seed {
	return stream.Seed{
		Age:        age,
		Category:   channel,
		Severity:   priority,
		Title:      subject,
		Message:    message,
		Attributes: attrs,
		Actionable: true,
	}
}
