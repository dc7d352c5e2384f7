// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command asn1dump prints the structure of BER encoded data.
//
// Without a schema every TLV of the input is printed on its own line together
// with its offset and a short preview of its value. With a schema the input is
// decoded and printed as JSON.
//
// Usage:
//
//	asn1dump [flags]
//
// The flags are:
//
//	-config file
//		TOML configuration file. Flags take precedence over its settings.
//	-input file
//		Input file. Standard input is used if not set.
//	-output file
//		Output file. Standard output is used if not set.
//	-format raw|hex|base64
//		Encoding of the input.
//	-schema none|pkcs7|receipt
//		Schema used to decode the input.
//	-max-depth n
//		Maximum nesting of constructed values.
//	-depth n
//		Number of nesting levels printed in the tree. Deeper values are
//		omitted. Zero prints all levels.
//	-signed
//		Decode INTEGER values as two's complement numbers.
//	-strict-lengths
//		Require explicit wrappers to be filled by the value they wrap.
//	-log-level level
//		Minimum level of log messages.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const appName = "asn1dump"

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logger := newLogger(os.Stderr, zerolog.InfoLevel)
		logger.Error().Err(err).Msg("dump failed")
		os.Exit(1)
	}
}

// newLogger returns a human readable logger writing to w.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", appName).Logger()
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath    = fs.String("config", "", "TOML configuration file (optional)")
		input         = fs.String("input", "", "Input file (optional, stdin is used if not set)")
		output        = fs.String("output", "", "Output file (optional, stdout is used if not set)")
		format        = fs.String("format", formatRaw, "Input format: raw, hex or base64")
		schema        = fs.String("schema", schemaNone, "Schema: none, pkcs7 or receipt")
		maxDepth      = fs.Int("max-depth", 0, "Maximum nesting depth (0 selects the default)")
		displayDepth  = fs.Int("depth", 0, "Number of tree levels to print (0 prints all)")
		signed        = fs.Bool("signed", false, "Decode integers as signed values")
		strictLengths = fs.Bool("strict-lengths", false, "Reject explicit wrappers with unused content")
		logLevel      = fs.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath, cfg); err != nil {
			return err
		}
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.InputFormat = *format
		case "schema":
			cfg.Schema = *schema
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "depth":
			cfg.DisplayDepth = *displayDepth
		case "signed":
			cfg.SignedIntegers = *signed
		case "strict-lengths":
			cfg.CheckWrapperLengths = *strictLengths
		case "log-level":
			cfg.LogLevel, err = zerolog.ParseLevel(*logLevel)
		}
	})
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	if err = cfg.validate(); err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.LogLevel)

	data, err := readInput(*input, stdin)
	if err != nil {
		return err
	}
	if data, err = decodeInput(data, cfg.InputFormat); err != nil {
		return err
	}
	logger.Debug().Int("bytes", len(data)).Str("schema", cfg.Schema).Msg("decoding input")

	var out bytes.Buffer
	if cfg.Schema == schemaNone {
		err = dumpTree(&out, data, cfg)
	} else {
		err = dumpSchema(&out, data, cfg.Schema, cfg.decoder(&logger))
	}
	if err != nil {
		return err
	}
	return writeOutput(*output, stdout, out.Bytes())
}

// writeOutput writes b to the file at path, or to stdout if path is empty or
// "-".
func writeOutput(path string, stdout io.Writer, b []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
