package main

import (
	"net/url"
	"strings"

	"github.com/multiplay/go-slack/chat"
	"github.com/multiplay/go-slack/webhook"
)

func init() { registerReporter(&reporterSlack{}) }

type reporterSlack struct {
	hook *webhook.Client
}

// InitializeFromURI retrieves the user input URI and must decide whether
// it can initialize from that or can't. If the URI is not suitable for the
// reporter an errInitializationNotPossible error needs to be returned. If
// the initialization failed because of an error it must be returned.
func (r *reporterSlack) InitializeFromURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return err
	}

	if u.Scheme != "slack+https" {
		return errInitializationNotPossible
	}

	r.hook = webhook.New(strings.TrimPrefix(uri, "slack+"))
	return nil
}

// Execute takes the content of the reporting and executes the
// delivery of the message to the specified targets.
func (r reporterSlack) Execute(success bool, content, runID, hostname string) error {
	var (
		verb     = "failed"
		msgColor = "#a94442"
	)

	if success {
		verb = "succeeded"
		msgColor = "#3c763d"
	}

	payload := &chat.Message{}
	payload.Text = "Run " + verb

	payload.AddAttachment(&chat.Attachment{
		Color: msgColor,
		Text:  "```\n" + content + "```",
		Fields: []*chat.Field{
			{
				Title: "Host",
				Value: hostname,
				Short: true,
			},
			{
				Title: "User",
				Value: cfg.User,
				Short: true,
			},
			{
				Title: "Command",
				Value: runID,
				Short: true,
			},
		},
		Footer: "polyjuice " + version,
	})

	_, err := payload.Send(r.hook)
	return err
}
