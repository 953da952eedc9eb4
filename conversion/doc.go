// Package conversion converts raw cell strings into typed Go values.
//
// A ValueConverter receives the raw cell and a TargetType describing the
// semantic kind of the destination (int, float, string, bool or one of the
// date/time kinds) together with a nullability flag. Nullable targets map an
// empty cell, or a cell spelling "null" in any case, to nil before any other
// rule is applied.
//
// Two implementations are provided:
//
//   - Converter, the default, coerces numbers loosely: leading whitespace is
//     skipped, the longest numeric prefix is used and anything else becomes 0.
//   - LocaleConverter parses numbers strictly, honouring the decimal and
//     grouping separators of a locale such as "de-AT".
//
// Both are safe for concurrent use once constructed.
package conversion
