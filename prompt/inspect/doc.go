/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package inspect summarizes compiled templates for tooling and reviews.
//
// Table writes one markdown row per template:
//
//	| Template          | Imports | Sections                    | Inputs       |
//	|-------------------|---------|-----------------------------|--------------|
//	| code-review       | std     | role, objective, task       | codeToReview |
//
// References that an imported helper satisfies (such as date) are listed
// with the inputs, since an input of the same name takes precedence.
package inspect
