package slack

import (
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/reactkit/internal/messenger"
)

// BuildPageBlocks renders a page as Block Kit blocks. Content comes first,
// then the embed as a header, description, field section and footer context.
func BuildPageBlocks(page messenger.Page) []slacklib.Block {
	var blocks []slacklib.Block

	if page.Content != "" {
		blocks = append(blocks, markdownSection(page.Content))
	}

	e := page.Embed
	if e == nil {
		return blocks
	}

	if e.Title != "" {
		blocks = append(blocks, slacklib.NewHeaderBlock(
			slacklib.NewTextBlockObject(slacklib.PlainTextType, e.Title, false, false),
		))
	}
	if e.Description != "" {
		blocks = append(blocks, markdownSection(e.Description))
	}
	if len(e.Fields) > 0 {
		fields := make([]*slacklib.TextBlockObject, 0, len(e.Fields))
		for _, f := range e.Fields {
			text := fmt.Sprintf("*%s*\n%s", f.Name, f.Value)
			fields = append(fields, slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false))
		}
		blocks = append(blocks, slacklib.NewSectionBlock(nil, fields, nil))
	}
	if e.Footer != "" {
		blocks = append(blocks, slacklib.NewContextBlock("",
			slacklib.NewTextBlockObject(slacklib.MarkdownType, e.Footer, false, false),
		))
	}

	return blocks
}

// FallbackText is the notification text Slack shows for a page.
func FallbackText(page messenger.Page) string {
	switch {
	case page.Content != "":
		return page.Content
	case page.Embed == nil:
		return ""
	case page.Embed.Title != "":
		return page.Embed.Title
	default:
		return page.Embed.Description
	}
}

func markdownSection(text string) *slacklib.SectionBlock {
	return slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil,
		nil,
	)
}
