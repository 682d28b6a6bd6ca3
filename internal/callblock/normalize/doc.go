// Package normalize turns user-entered or caller-ID supplied phone numbers into
// the canonical form used as the blacklist key.
//
// The canonical form holds only an optional leading '+', ASCII digits and the
// SQL-style wildcards '%' (any run, written '*' by users) and '_' (exactly one
// character, written '.'). When a country can be resolved and the number is a
// literal, it is further formatted to strict E.164.
package normalize
