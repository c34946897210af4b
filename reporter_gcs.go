package main

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

func init() { registerReporter(&reporterGCS{}) }

type reporterGCS struct {
	bucket *storage.BucketHandle
	client *storage.Client
	prefix string
}

// InitializeFromURI retrieves the user input URI and must decide whether
// it can initialize from that or can't. If the URI is not suitable for the
// reporter an errInitializationNotPossible error needs to be returned. If
// the initialization failed because of an error it must be returned.
func (r *reporterGCS) InitializeFromURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return err
	}

	if u.Scheme != "gs" {
		return errInitializationNotPossible
	}

	r.prefix = strings.TrimPrefix(u.Path, "/")

	r.client, err = storage.NewClient(context.Background())
	if err != nil {
		return err
	}

	r.bucket = r.client.Bucket(u.Host)
	return nil
}

// Execute takes the content of the reporting and executes the
// delivery of the message to the specified targets. Every run gets its
// own object below <prefix>/<hostname>/.
func (r reporterGCS) Execute(success bool, content, runID, hostname string) error {
	var verb = "with failure"
	if success {
		verb = "successfully"
	}

	obj := r.bucket.Object(path.Join(r.prefix, hostname, time.Now().Format(`2006-01-02T15-04-05`)+".log"))

	w := obj.NewWriter(context.Background())
	w.ContentType = "text/plain"

	fmt.Fprintf(w, "[%s] Run %q finished %s:\n", time.Now().Format(time.RFC3339), runID, verb)
	fmt.Fprintln(w, content)

	return w.Close()
}
