// Package normalisers provides the pure record normalisers used to derive
// party fields from raw customer register values: name splitting, mobile
// phone canonicalisation, postal address splitting and personal number
// classification.
//
// None of these functions perform I/O, and each is idempotent on its own
// output. The party subpackage combines them into a driven.PartyNormaliser.
package normalisers
