// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response and domain types for the Curia API.

# Type Categories

  - Constants: suggestion status/type, vote values, event types, periods
  - Payload variants: one struct per suggestion type
  - Request types: parsed from JSON request bodies
  - Response types: serialized to JSON responses
  - Domain types: database entities

# Suggestion Payloads

A suggestion's payload shape depends on its type. The four variants:

	add_tag               → AddTagPayload{TagID, PackageID}
	add_ecosystem_package → AddEcosystemPackagePayload{EcosystemID, PackageID}
	create_ecosystem      → CreateEcosystemPayload{Name, Description?, Website?}
	create_tag            → CreateTagPayload{Name, Description?}

Payloads travel as json.RawMessage and are decoded into the variant struct
by the curation package, which also validates required fields.

# JSON Serialization

All types use struct tags for JSON field names. Internal bookkeeping fields
are excluded:

	DedupeKey string `json:"-"` // never exposed
	MonthKey  string `json:"-"` // never exposed

# Status Lifecycle

Suggestions progress pending → approved | rejected (terminal, set once):

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
*/
package models
