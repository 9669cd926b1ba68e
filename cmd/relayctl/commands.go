package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/codec"
	"github.com/reoring/relaywire/control"
)

func putChannelFlags(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "channel file (.json, .yaml or .yml)")
}

func putChannel(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	path, _ := fs.GetString("file")
	if path == "" {
		return usagef("put-channel: --file is required")
	}
	if fs.NArg() != 0 {
		return usagef("put-channel: unexpected arguments %v", fs.Args())
	}
	ch, err := readChannel(path)
	if err != nil {
		return err
	}
	if err := ch.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c, err := e.controlClient()
	if err != nil {
		return err
	}
	out, err := c.PutChannel(ctx, ch)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(out))
	return nil
}

// readChannel decodes a channel from JSON, or from YAML when the file
// extension says so.
func readChannel(path string) (relaywire.Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return relaywire.Channel{}, err
	}
	var ch relaywire.Channel
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var tree any
		if tree, err = relaywire.ParseYAML(data); err == nil {
			ch, err = relaywire.DecodeChannel(tree, relaywire.Root)
		}
	default:
		ch, err = codec.Channel().Unmarshal(data)
	}
	if err != nil {
		return relaywire.Channel{}, fmt.Errorf("%s: %w", path, err)
	}
	return ch, nil
}

func deleteChannel(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return usagef("delete-channel: expected exactly one DESCRIPTOR argument")
	}
	c, err := e.controlClient()
	if err != nil {
		return err
	}
	out, err := c.DeleteChannel(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(out))
	return nil
}

func listChannelsFlags(fs *pflag.FlagSet) {
	fs.Int("page", 0, "page to fetch (server default 1)")
	fs.Int("per-page", 0, "channels per page (server default 100)")
	fs.Bool("all", false, "fetch every page and print the concatenated channels")
}

func listChannels(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	page, _ := fs.GetInt("page")
	perPage, _ := fs.GetInt("per-page")
	all, _ := fs.GetBool("all")
	if all && fs.Changed("page") {
		return usagef("list-channels: --all and --page are exclusive")
	}
	c, err := e.controlClient()
	if err != nil {
		return err
	}

	if all {
		channels, err := c.AllChannels(ctx, perPage)
		if err != nil {
			return err
		}
		if channels == nil {
			channels = []relaywire.Channel{}
		}
		tree, err := relaywire.Encode(channels, relaywire.ListOf(relaywire.Record(relaywire.KindChannel)), relaywire.Root)
		if err != nil {
			return err
		}
		return printJSON(e, tree)
	}

	var opts control.ListOptions
	if fs.Changed("page") {
		opts.Page = relaywire.Some(page)
	}
	if fs.Changed("per-page") {
		opts.PerPage = relaywire.Some(perPage)
	}
	p, err := c.ListChannels(ctx, opts)
	if err != nil {
		return err
	}
	tree, err := relaywire.EncodeChannelsPage(p, relaywire.Root)
	if err != nil {
		return err
	}
	return printJSON(e, tree)
}

func sendMessageFlags(fs *pflag.FlagSet) {
	fs.String("descriptor", "", "channel descriptor")
	fs.String("token", "", "channel token")
	fs.String("subject", "", "message subject")
	fs.String("content", "", "plain text body")
	fs.String("content-file", "", "read the plain text body from a file")
	fs.String("html-file", "", "read an HTML body from a file")
}

func sendMessage(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	descriptor, _ := fs.GetString("descriptor")
	token, _ := fs.GetString("token")
	subject, _ := fs.GetString("subject")
	content, _ := fs.GetString("content")
	contentFile, _ := fs.GetString("content-file")
	htmlFile, _ := fs.GetString("html-file")

	if descriptor == "" || token == "" {
		return usagef("send-message: --descriptor and --token are required")
	}
	if fs.Changed("content") == (contentFile != "") {
		return usagef("send-message: exactly one of --content and --content-file is required")
	}

	msg := relaywire.NewMessage()
	msg.Subject = subject
	msg.Content = content
	if contentFile != "" {
		b, err := os.ReadFile(contentFile)
		if err != nil {
			return err
		}
		msg.Content = string(b)
	}
	if htmlFile != "" {
		b, err := os.ReadFile(htmlFile)
		if err != nil {
			return err
		}
		msg.HTML = relaywire.Some(string(b))
	}

	c, err := e.relayClient()
	if err != nil {
		return err
	}
	out, err := c.PutMessage(ctx, descriptor, token, msg)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(out))
	return nil
}

func printSchema(_ context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return usagef("schema: expected exactly one KIND argument")
	}
	kind, err := relaywire.ParseRecordKind(fs.Arg(0))
	if err != nil {
		return usagef("schema: %v", err)
	}
	doc, err := relaywire.RecordJSONSchema(kind)
	if err != nil {
		return err
	}
	b, err := gojson.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(b))
	return nil
}

func printJSON(e *env, tree any) error {
	b, err := relaywire.MarshalJSON(tree)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(b))
	return nil
}
