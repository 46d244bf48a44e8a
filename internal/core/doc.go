// Package core reconciles configurator article lists against the product
// catalogs and projects the result into the three downloadable artifacts.
//
// It is independent of any transport: the web server, the CLI and the tests
// all drive it through [Service] or directly through [Engine] and the
// projector functions.
//
// # Matching
//
// Every article number yields an ordered list of candidate keys (see
// [Candidates]):
//
//	DIRECT            the article number as given
//	FALLBACK_BASE     the part before the first "-"
//	FALLBACK_SPECIAL  the base key without a leading SPECIAL token
//
// Each catalog is searched independently, one tier at a time. The first hit
// wins unless its key contains the reject marker ("ALL COLORS"), in which
// case the search continues with the next tier. A row with no accepted hit
// binds [TierNone]; that is a normal outcome, not an error.
//
// The fallback tiers are switched by [MatchOptions], so older matching
// behaviors (no fallback, base only) are configuration, not code.
//
// # Projections
//
//   - [ProjectPresentation]: "{qty} X {name}" lines, uppercased, sorted
//     case-insensitively and stably.
//   - [ProjectOrderImport]: (quantity, base key) pairs in input order.
//   - [ProjectItemMapping] and [ProjectMasterData]: the two wide tables of
//     the SKU mapping workbook.
//
// # Errors
//
// Catalog problems surface as catalog.ConfigError before any row is
// processed and unreadable uploads as extract.MalformedError. [MapError]
// turns either into a [UserMessage] with a support code.
package core
