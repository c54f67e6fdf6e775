// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// seqpipe runs list transformation pipelines declared in a YAML config
// file. Each pipeline names its input, an optional filter and map
// stage, and a reduction; the final value of each pipeline prints in
// config order.
//
// Pass -dump to print each pipeline's graph as JSON instead of
// running, and -v to stream execution logs to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	_ "gocloud.dev/blob/fileblob"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v2"

	"github.com/datchley/seqpipe"
	"github.com/datchley/seqpipe/internal/execlog"
)

// Config handles configuring the launcher.
type Config struct {
	ConfigPath string
	Dump       bool
	Verbose    bool
}

func initFlags() *Config {
	var cfg Config
	flag.StringVar(&cfg.ConfigPath, "config", "pipelines.yaml", "path to the pipeline config file")
	flag.BoolVar(&cfg.Dump, "dump", false, "print each pipeline graph as JSON instead of running")
	flag.BoolVar(&cfg.Verbose, "v", false, "stream execution log entries to stderr")
	return &cfg
}

func main() {
	cfg := initFlags()
	flag.Parse()

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "parsing config %q", cfg.ConfigPath)
	}
	if len(file.Pipelines) == 0 {
		return errors.Errorf("config %q declares no pipelines", cfg.ConfigPath)
	}

	if cfg.Dump {
		return dump(file, out)
	}

	var opts []seqpipe.Options
	if cfg.Verbose {
		entries := make(chan *execlog.Entry, 128)
		go printEntries(entries)
		logger := slog.New(execlog.New(entries, &execlog.Options{Level: slog.LevelDebug}))
		opts = append(opts, seqpipe.Logger(logger))
	}

	results := make([]float64, len(file.Pipelines))
	eg, egctx := errgroup.WithContext(ctx)
	for i, spec := range file.Pipelines {
		eg.Go(func() error {
			var sink *seqpipe.CollectFn[float64]
			_, err := seqpipe.LaunchAndWait(egctx, func(s *seqpipe.Scope) error {
				var berr error
				sink, berr = spec.build(s)
				return berr
			}, append(opts, seqpipe.Name(spec.Name))...)
			if err != nil {
				return err
			}
			if len(sink.Got) != 1 {
				return errors.Errorf("pipeline %q produced %d results, want 1", spec.Name, len(sink.Got))
			}
			results[i] = sink.Got[0]
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	pr := message.NewPrinter(language.English)
	for i, spec := range file.Pipelines {
		pr.Fprintf(out, "%s: %v\n", spec.Name, results[i])
	}
	return nil
}

func dump(file File, out io.Writer) error {
	for _, spec := range file.Pipelines {
		d, err := seqpipe.Describe(func(s *seqpipe.Scope) error {
			_, berr := spec.build(s)
			return berr
		}, seqpipe.Name(spec.Name))
		if err != nil {
			return err
		}
		b, err := d.JSON()
		if err != nil {
			return errors.Wrapf(err, "describing pipeline %q", spec.Name)
		}
		fmt.Fprintln(out, string(b))
	}
	return nil
}

func printEntries(entries <-chan *execlog.Entry) {
	for e := range entries {
		fmt.Fprintf(os.Stderr, "%s %s transform=%q %s %v\n",
			e.Time.Format(time.RFC3339), e.Level, e.TransformID, e.Message, e.Attrs)
	}
}
