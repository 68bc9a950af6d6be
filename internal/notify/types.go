// Package notify delivers alert messages to a Slack-compatible incoming webhook.
package notify

// Message is the JSON body posted to the webhook
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a Slack layout block
type Block struct {
	Text *TextObject `json:"text,omitempty"`
	Type string      `json:"type"`
}

// TextObject is the text element of a section block
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Delivery reports the outcome of a single send attempt
type Delivery struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code,omitempty"`
	OK         bool   `json:"ok"`
}
