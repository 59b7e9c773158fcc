package units

import (
	"context"
	"strings"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/workflow"
)

// strongResume is a well-structured fixture that passes every resume
// heuristic: standard sections, bullets, contact info, 100-800 words.
const strongResume = `Jordan Reyes
jordan.reyes@example.com | (415) 555-0172 | San Francisco, CA

Professional Summary
Backend engineer with eight years of experience designing and operating
distributed systems in Go. Known for pragmatic delivery, a strong code
review culture, and mentoring mid-level engineers through complex
migrations without downtime.

Technical Skills
- Go, Python, SQL, gRPC, Protocol Buffers
- PostgreSQL, Redis, RabbitMQ, Kafka
- Kubernetes, Terraform, AWS, observability tooling

Professional Experience
Senior Software Engineer, Meridian Labs (2019 - present)
- Led the migration of a monolithic billing system to event-driven
  services, cutting settlement latency from hours to minutes
- Built a rate-limiting proxy handling 40k requests per second with
  p99 latency under five milliseconds
- Reduced infrastructure spend 30 percent by consolidating worker
  fleets and right-sizing autoscaling policies

Education
B.S. Computer Science, University of Washington

Certifications
AWS Certified Solutions Architect`

// strongLetter passes every cover letter heuristic: greeting, closing,
// several personalization indicators, 3-5 paragraphs, 150-400 words.
const strongLetter = `Dear Hiring Manager,

I am excited to apply for this role at Meridian Labs. Your company has
a reputation for shipping reliable infrastructure at a pace most teams
only aspire to, and the chance to contribute to your mission of making
payments boring and dependable is exactly the kind of problem I want
to take on next.

Over the past eight years I have designed and operated distributed
systems in Go, most recently leading the migration of a monolithic
billing platform to event-driven services without a minute of customer
downtime. That work demanded the same blend of careful rollout
planning and production empathy that this position calls for, and I
would bring the same discipline to your team from day one.

I would welcome the opportunity to talk about how my experience with
high-throughput messaging and cost-conscious infrastructure could help
your team deliver on its roadmap this year. I am comfortable owning
systems end to end, from design reviews through on-call, and I enjoy
leaving codebases easier to work in than I found them.

Thank you for your consideration.
Sincerely,
Jordan Reyes`

const sampleCV = `Jordan Reyes, backend engineer. Eight years of experience building
distributed systems in Go, PostgreSQL and RabbitMQ. Led the billing
migration at Meridian Labs.`

const sampleJob = `Senior Backend Engineer at Meridian Labs. Requires Go, PostgreSQL,
message queues and production operations experience.`

// routingClient answers each unit by recognizing its instruction text,
// the way the live backend is addressed one prompt at a time.
func routingClient() completion.Client {
	return completion.Func(func(ctx context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "CV analysis specialist"):
			return `{"skills": ["Go", "PostgreSQL"], "keywords": ["distributed systems"]}`, nil
		case strings.Contains(prompt, "job requirements analyst"):
			return `{"job_title": "Senior Backend Engineer", "required_skills": ["Go"]}`, nil
		case strings.Contains(prompt, "resume writer"):
			return strongResume, nil
		case strings.Contains(prompt, "cover letter writer"):
			return strongLetter, nil
		}
		return "unrecognized prompt", nil
	})
}

// echoClient returns the prompt it was given, for asserting prompt
// assembly.
func echoClient() completion.Client {
	return completion.Func(func(ctx context.Context, prompt string) (string, error) {
		return prompt, nil
	})
}

// runUnit drains a single unit run against a fixed snapshot.
func runUnit(u workflow.Unit, snap workflow.Snapshot) []workflow.Event {
	var events []workflow.Event
	for event := range u.Run(context.Background(), snap) {
		events = append(events, event)
	}
	return events
}

// mergedDelta folds every event delta into one map, last write wins.
func mergedDelta(events []workflow.Event) map[string]any {
	merged := map[string]any{}
	for _, event := range events {
		for k, v := range event.Delta {
			merged[k] = v
		}
	}
	return merged
}
