// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"codello.dev/asn1-template/ber"
)

// Supported values of the schema setting.
const (
	schemaNone    = "none"
	schemaPKCS7   = "pkcs7"
	schemaReceipt = "receipt"
)

// Supported values of the input format setting.
const (
	formatRaw    = "raw"
	formatHex    = "hex"
	formatBase64 = "base64"
)

// Config holds the settings of a dump.
type Config struct {
	MaxDepth             int
	DisplayDepth         int
	SignedIntegers       bool
	CheckWrapperLengths  bool
	DisallowTrailingData bool
	Schema               string
	InputFormat          string
	LogLevel             zerolog.Level
}

func defaultConfig() Config {
	return Config{
		Schema:      schemaNone,
		InputFormat: formatRaw,
		LogLevel:    zerolog.InfoLevel,
	}
}

type fileConfig struct {
	MaxDepth             int    `toml:"max_depth"`
	DisplayDepth         int    `toml:"display_depth"`
	SignedIntegers       bool   `toml:"signed_integers"`
	CheckWrapperLengths  bool   `toml:"check_wrapper_lengths"`
	DisallowTrailingData bool   `toml:"disallow_trailing_data"`
	Schema               string `toml:"schema"`
	InputFormat          string `toml:"input_format"`
	LogLevel             string `toml:"log_level"`
}

// loadConfig applies the settings defined in the TOML file at path to cfg.
func loadConfig(path string, cfg Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("display_depth") {
		cfg.DisplayDepth = raw.DisplayDepth
	}
	if meta.IsDefined("signed_integers") {
		cfg.SignedIntegers = raw.SignedIntegers
	}
	if meta.IsDefined("check_wrapper_lengths") {
		cfg.CheckWrapperLengths = raw.CheckWrapperLengths
	}
	if meta.IsDefined("disallow_trailing_data") {
		cfg.DisallowTrailingData = raw.DisallowTrailingData
	}
	if meta.IsDefined("schema") {
		cfg.Schema = strings.TrimSpace(raw.Schema)
	}
	if meta.IsDefined("input_format") {
		cfg.InputFormat = strings.TrimSpace(raw.InputFormat)
	}
	if meta.IsDefined("log_level") {
		level, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return Config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = level
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}

// validate reports invalid settings.
func (c Config) validate() error {
	switch c.Schema {
	case schemaNone, schemaPKCS7, schemaReceipt:
	default:
		return fmt.Errorf("unknown schema %q", c.Schema)
	}
	switch c.InputFormat {
	case formatRaw, formatHex, formatBase64:
	default:
		return fmt.Errorf("unknown input format %q", c.InputFormat)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth %d", c.MaxDepth)
	}
	if c.DisplayDepth < 0 {
		return fmt.Errorf("invalid display depth %d", c.DisplayDepth)
	}
	return nil
}

// decoder returns a ber.Decoder using the settings of c.
func (c Config) decoder(logger *zerolog.Logger) *ber.Decoder {
	return &ber.Decoder{
		MaxDepth:             c.MaxDepth,
		SignedIntegers:       c.SignedIntegers,
		CheckWrapperLengths:  c.CheckWrapperLengths,
		DisallowTrailingData: c.DisallowTrailingData,
		Logger:               logger,
	}
}
