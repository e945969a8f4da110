// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package middleware inspects the request-targets of incoming HTTP requests.

[Inspect] decomposes and normalizes every request-target with a
[uri.Normalizer] and stores the result in the request context, where handlers
read it back with [FromContext]. Optionally it evaluates inspection rules and
answers requests a protected backend would reject.

# Basic Usage

	n, err := uri.NewNormalizer(cfg, uri.WithLogger(logger))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if res, ok := middleware.FromContext(r.Context()); ok {
			fmt.Fprintln(w, string(res.Normalized.Path))
		}
	})

	handler := middleware.Recover(logger)(
		middleware.Inspect(n, middleware.WithLogger(logger), middleware.WithRules(set))(mux),
	)
	http.ListenAndServe(":8080", handler)

# Enforcement

By default requests are only annotated. A matching rule always blocks the
request with the rule's status. [WithEnforcement] additionally answers every
request whose normalization predicts a backend status, such as 404 for an
encoded separator under the apache_2 personality, with that status.

# Recovery

[Recover] turns a panic in a handler into a 500 response and logs the panic
value together with the stack.
*/
package middleware
