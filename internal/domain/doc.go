// Package domain models the conference catalog and the marketplace job types
// built on top of it.
//
// # Catalog Data
//
// The catalog is a fixed set of conference records loaded once at process
// start and immutable afterwards. Each record is keyed by a slug: a unique,
// stable, lowercase identifier ("ethdenver", "token2049-singapore"). Reloading
// the catalog requires a process restart; nothing mutates entries at runtime,
// which is what makes lookups safe for concurrent request handlers without
// locking.
//
// # Fuzzy Matching
//
// Free-text queries resolve against a per-entry searchable string: the
// lowercased name, slug, city, country, and tags joined by spaces. Each query
// word of three or more characters that appears as a substring of the
// searchable text adds its character length to the entry's score, so longer,
// more specific terms dominate short accidental hits ("token2049" outweighs
// "asia"). Words under three characters are ignored entirely. The single
// strictly-highest score wins; a top score of zero is a definitive no-match.
// Equal scores break by slug order, which keeps results reproducible across
// runs. An exact slug match short-circuits scoring altogether.
//
// # Date Ranges
//
// Conference dates arrive as human-authored strings, not machine dates:
//
//	"Feb 27 - Mar 8, 2026"   cross-month range
//	"Oct 7-8, 2026"          same-month range
//	"Dec 2026 (TBC)"         no day pattern, unparsable
//
// Parsing locates a 4-digit year anywhere in the string (defaulting to the
// current year when absent), then a "Month Day" pattern with an optional
// "- [Month] Day" tail. Month names match case-insensitively on their first
// three letters. A missing second month reuses the first. The year token is
// removed before day matching so "Dec 2026" does not parse as December 20th.
// Strings with no month-day pattern are unparsable, which is an ordinary
// result rather than an error.
//
// # Temporal Classification
//
// A conference classifies as upcoming, ongoing, or past against the current
// time. The parsed window runs from start of the first day to 23:59 local on
// the last day, so a one-day event still has a non-zero window. Unparsable
// ranges classify as upcoming: TBC placeholders are almost always future
// events and must not be treated as expired. Message wording for past or
// ongoing conferences is the caller's concern; this package only reports the
// status.
package domain
