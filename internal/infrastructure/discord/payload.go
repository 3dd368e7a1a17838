package discord

import (
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/notification"
)

// Identity is how the webhook presents itself in the channel.
type Identity struct {
	Username   string
	AvatarURL  string
	FooterText string
	FooterIcon string
}

func DefaultIdentity() Identity {
	return Identity{
		Username:   "DEVIX Store",
		AvatarURL:  "https://i.imgur.com/AfFp7pu.png",
		FooterText: "DEVIX Store © 2024",
		FooterIcon: "https://i.imgur.com/AfFp7pu.png",
	}
}

type Payload struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields"`
	Thumbnail   *Image       `json:"thumbnail,omitempty"`
	Footer      Footer       `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Image struct {
	URL string `json:"url"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// NewPayload wraps a rendered event into a single-embed webhook message.
func NewPayload(id Identity, ev notification.Event) Payload {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	fields := make([]EmbedField, 0, len(ev.Fields))
	for _, f := range ev.Fields {
		fields = append(fields, EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := Embed{
		Title:       ev.Title,
		Description: ev.Description,
		Color:       int(ev.Color),
		Fields:      fields,
		Footer:      Footer{Text: id.FooterText, IconURL: id.FooterIcon},
		Timestamp:   ts.UTC().Format(time.RFC3339),
	}
	if ev.Thumbnail != "" {
		embed.Thumbnail = &Image{URL: ev.Thumbnail}
	}
	return Payload{
		Username:  id.Username,
		AvatarURL: id.AvatarURL,
		Embeds:    []Embed{embed},
	}
}
