// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/stacklok/urinorm/rules"
	"github.com/stacklok/urinorm/uri"
)

// report is one line of output. Target has invalid UTF-8 bytes
// percent-escaped; the exact bytes are in Result.Raw.
type report struct {
	Target string      `json:"target"`
	Result *uri.Result `json:"result"`
	Rule   string      `json:"rule,omitempty"`
	Status int         `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func inspectAll(opts *options, n *uri.Normalizer, set *rules.RuleSet, targets []string, s streams) error {
	enc := json.NewEncoder(s.out)
	enc.SetEscapeHTML(false)

	emit := func(target string) error {
		rep, err := inspectOne(opts, n, set, target)
		if err != nil {
			return err
		}
		return enc.Encode(rep)
	}

	if len(targets) > 0 {
		for _, target := range targets {
			if err := emit(target); err != nil {
				return err
			}
		}
		return nil
	}

	// Lines are read without a length limit so long targets are inspected too.
	r := bufio.NewReader(s.in)
	for {
		line, err := r.ReadBytes('\n')
		line = bytes.TrimSuffix(bytes.TrimSuffix(line, []byte{'\n'}), []byte{'\r'})
		if len(line) > 0 {
			if err := emit(string(line)); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read targets: %w", err)
		}
	}
}

func inspectOne(opts *options, n *uri.Normalizer, set *rules.RuleSet, target string) (*report, error) {
	req := uri.Request{Target: []byte(target), LocalPort: opts.localPort}
	if opts.host != "" {
		req.Host = []byte(opts.host)
	}

	res, err := n.Inspect(req)
	if err != nil {
		return nil, err
	}

	rep := &report{Target: uri.EscapeInvalidUTF8([]byte(target)), Result: res}
	match, err := set.Evaluate(res)
	if err != nil {
		rep.Error = err.Error()
	}
	if match != nil {
		rep.Rule = match.Rule.Name
		rep.Status = match.Status()
	}
	return rep, nil
}
