/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is a little command-line utility that picks nodes out
// of documents.
//
//	handpick -p '{"likes":"?"}' data.json
//	handpick -lang js -p 'x => x.temp > 30' -mqtt tcp://localhost:1883 -topic sensors
//	handpick -key id -bolt store.db -bucket events
//	handpick -depth data.yaml
//
// Each result is printed as a line of JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Comcast/handpick/interpreters"
	"github.com/Comcast/handpick/interpreters/goja"
	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/source"
	"github.com/Comcast/handpick/util"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "handpick: %s\n", err)
		os.Exit(1)
	}
}

// Config is everything from the command line.
type Config struct {
	Query *Query

	Filename string
	Format   string

	BoltFile string
	Bucket   string

	WebSocketURL string

	Broker   string
	Topic    string
	ClientID string
	Count    int

	Timeout time.Duration
	Bench   int
	Verbose bool
}

func parse(args []string, stderr io.Writer) (*Config, error) {
	var (
		fs = flag.NewFlagSet("handpick", flag.ContinueOnError)
		c  = &Config{}
		q  = NewQuery()

		queryFile = fs.String("q", "", "optional query file (YAML)")
		keys      = fs.String("key", "", "comma-separated keys whose values to report")
	)
	fs.SetOutput(stderr)

	fs.StringVar(&q.Lang, "lang", q.Lang, "predicate language ("+strings.Join(interpreters.Standard().Names(), ", ")+")")
	pred := fs.String("p", "", "predicate source")
	fs.BoolVar(&q.Depth, "depth", q.Depth, "report the maximum depth of each document")
	fs.BoolVar(&q.Collections, "collections", q.Collections, "report collections as well as their elements")
	fs.BoolVar(&q.DictKeys, "dict-keys", q.DictKeys, "walk mapping keys")
	fs.BoolVar(&q.Strings, "strings", q.Strings, "walk strings as collections of characters")
	fs.BoolVar(&q.Bytes, "bytes", q.Bytes, "walk byte strings as collections of ints")
	fs.BoolVar(&q.Strict, "strict", q.Strict, "don't treat predicate errors as false")

	fs.StringVar(&c.Format, "f", "", "input format (json or yaml); default from file extension")
	fs.StringVar(&c.BoltFile, "bolt", "", "read documents from this bbolt database")
	fs.StringVar(&c.Bucket, "bucket", "docs", "bbolt bucket")
	fs.StringVar(&c.WebSocketURL, "ws", "", "read documents from this WebSocket URL")
	fs.StringVar(&c.Broker, "mqtt", "", "read documents from this MQTT broker (tcp://host:port)")
	fs.StringVar(&c.Topic, "topic", "#", "MQTT topic(s) as TOPIC[:QOS],...")
	fs.StringVar(&c.ClientID, "client-id", "handpick", "MQTT client id")
	fs.IntVar(&c.Count, "count", 0, "stop after this many MQTT messages (0 for no limit)")
	fs.DurationVar(&c.Timeout, "timeout", 0, "time limit for each JavaScript predicate call")
	fs.IntVar(&c.Bench, "bench", 0, "number of times to run (and report time) per document")
	fs.BoolVar(&c.Verbose, "v", false, "verbosity")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *queryFile != "" {
		fromFile, err := ReadQuery(*queryFile)
		if err != nil {
			return nil, err
		}
		// Flags given explicitly override the file.
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "lang":
				fromFile.Lang = q.Lang
			case "depth":
				fromFile.Depth = q.Depth
			case "collections":
				fromFile.Collections = q.Collections
			case "dict-keys":
				fromFile.DictKeys = q.DictKeys
			case "strings":
				fromFile.Strings = q.Strings
			case "bytes":
				fromFile.Bytes = q.Bytes
			case "strict":
				fromFile.Strict = q.Strict
			}
		})
		q = fromFile
	}
	if *pred != "" {
		q.Predicate = *pred
	}
	if *keys != "" {
		q.Keys = strings.Split(*keys, ",")
	}
	c.Query = q

	switch fs.NArg() {
	case 0:
	case 1:
		c.Filename = fs.Arg(0)
	default:
		return nil, fmt.Errorf("at most one input file, not %d", fs.NArg())
	}

	return c, nil
}

// Source opens the document source.  The returned function releases
// it.
func (c *Config) Source(stdin io.Reader) (source.Source, func(), error) {
	switch {
	case c.BoltFile != "":
		s, err := source.OpenBolt(c.BoltFile, c.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case c.WebSocketURL != "":
		return source.NewWebSocket(c.WebSocketURL), func() {}, nil

	case c.Broker != "":
		s := &source.MQTT{
			Client:      source.NewMQTTClient(c.Broker, c.ClientID),
			Topics:      c.Topic,
			InjectTopic: true,
			Limit:       c.Count,
			Buffer:      64,
		}
		return s, func() { s.Client.Disconnect(250) }, nil
	}

	in, done := stdin, func() {}
	format := c.Format
	if c.Filename != "" && c.Filename != "-" {
		f, err := os.Open(c.Filename)
		if err != nil {
			return nil, nil, err
		}
		in, done = f, func() { f.Close() }
		if format == "" {
			format = source.FormatOf(c.Filename)
		}
	}
	if format == "" {
		format = "json"
	}
	s, err := source.ForFormat(format, in)
	if err != nil {
		done()
		return nil, nil, err
	}
	return s, done, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c, err := parse(args, stderr)
	if err != nil {
		return err
	}

	util.Logging = c.Verbose
	logger := log.New(stderr, "", log.LstdFlags)

	cs := interpreters.Standard()
	js := goja.NewInterpreter()
	js.Timeout = c.Timeout
	cs["goja"], cs["ecmascript"], cs["js"] = js, js, js

	opts, err := c.Query.Options(ctx, cs)
	if err != nil {
		return err
	}

	src, done, err := c.Source(stdin)
	if err != nil {
		return err
	}
	defer done()

	enc := json.NewEncoder(stdout)
	emit := func(x any) error {
		return enc.Encode(x)
	}

	for doc, err := range src.Docs(ctx) {
		if err != nil {
			return err
		}
		if 0 < c.Bench {
			if err := bench(c.Query, doc, opts, c.Bench, logger); err != nil {
				return err
			}
		}
		if err := c.Query.Run(doc, opts, emit); err != nil {
			return err
		}
	}
	return nil
}

// bench times n runs of the query over the document.
func bench(q *Query, doc any, opts []pick.Option, n int, logger *log.Logger) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	allocs := stats.TotalAlloc
	then := time.Now()
	for i := 0; i < n; i++ {
		if err := q.Run(doc, opts, func(any) error { return nil }); err != nil {
			return err
		}
	}
	elapsed := time.Since(then)
	meanNanos := elapsed.Nanoseconds() / int64(n)

	runtime.ReadMemStats(&stats)
	allocated := (stats.TotalAlloc - allocs) / uint64(n)

	logger.Printf("%d iterations, %d mean ns/pick, %d mean bytes allocated per pick", n, meanNanos, allocated)
	return nil
}
