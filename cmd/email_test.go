/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

func TestGenerateEmailContent(t *testing.T) {
	svc := service.New(service.Config{})
	entries := loadTestHistory(t, svc)

	config := SendEmailConfig{Filter: analysis.ForYear(2023), Limit: 20}
	actions := []Analyser{
		TopArtistsAnalyzer{Config: AnalyserConfig{20}},
		ExploreAnalyzer{},
	}

	subject, body, err := generateEmailContent(context.Background(), svc, entries, config, actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}

	if subject != "Listening report for 2023" {
		t.Errorf("Subject mismatch.\nGot: %s", subject)
	}
	for _, want := range []string{
		"<h2>Top artists for 2023:</h2>",
		"<h2>Overview for 2023:</h2>",
		"<table>",
		"<td>Artist X</td>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Body missing %q", want)
		}
	}
	if strings.Contains(body, "No listens found") {
		t.Error("Body incorrectly reports 'No listens found'")
	}
}

func TestGenerateEmailContentNoData(t *testing.T) {
	svc := service.New(service.Config{})
	entries := loadTestHistory(t, svc)

	config := SendEmailConfig{Filter: analysis.ForMonth(2020, time.January)}
	actions := []Analyser{TopArtistsAnalyzer{Config: AnalyserConfig{20}}}

	subject, body, err := generateEmailContent(context.Background(), svc, entries, config, actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}
	if subject != "Listening report for 2020-01" {
		t.Errorf("Subject mismatch.\nGot: %s", subject)
	}
	if !strings.Contains(body, "No listens found") {
		t.Error("Body missing 'No listens found' message")
	}
	if strings.Contains(body, "<table>") {
		t.Error("Body should not contain a table")
	}
}

func TestParseEmailArgs(t *testing.T) {
	path := writeTestHistory(t)

	config, err := parseEmailArgs([]string{"me@example.com", path, "top-songs", "weekdays", "2023-01"})
	if err != nil {
		t.Fatalf("parseEmailArgs: %v", err)
	}
	if config.To != "me@example.com" || config.Source != path {
		t.Errorf("config = %+v", config)
	}
	if strings.Join(config.Types, ",") != "top-songs,weekdays" {
		t.Errorf("Types = %v", config.Types)
	}
	if config.Filter.Year != 2023 || config.Filter.Month != time.January {
		t.Errorf("Filter = %v", config.Filter)
	}

	config, err = parseEmailArgs([]string{"me@example.com", path})
	if err != nil {
		t.Fatalf("parseEmailArgs: %v", err)
	}
	if strings.Join(config.Types, ",") != strings.Join(defaultEmailAnalyses, ",") || !config.Filter.IsZero() {
		t.Errorf("defaults not applied: %+v", config)
	}

	if _, err := parseEmailArgs([]string{"me@example.com", path, "new-artists"}); err == nil {
		t.Errorf("expected an error for an unknown analysis")
	}
}

func TestSendEmailDryRun(t *testing.T) {
	config := SendEmailConfig{
		To:     "me@example.com",
		Source: writeTestHistory(t),
		Types:  defaultEmailAnalyses,
		Limit:  5,
		DryRun: true,
	}
	if err := sendEmail(context.Background(), config); err != nil {
		t.Fatalf("sendEmail: %v", err)
	}
}

func TestSendEmailRequiresAPIKey(t *testing.T) {
	config := SendEmailConfig{
		To:     "me@example.com",
		Source: writeTestHistory(t),
		Types:  []string{"top-songs"},
		Limit:  5,
	}
	err := sendEmail(context.Background(), config)
	if err == nil || !strings.Contains(err.Error(), "sendgrid_api_key") {
		t.Fatalf("expected a missing key error, got %v", err)
	}
}
