// Package override implements the inline styling language of ASS dialogue
// text.
//
// Dialogue text is split by Tokenize into Plain, Drawing, Comment and
// Override blocks. Override blocks hold Tags, each matched by prefix against
// an ordered prototype table that declares the parameter types. Optional
// parameters are selected by the total number of tokens a tag carries, which
// is how \fade, \move, \t and the vector form of \clip accept several
// argument counts. Parameters keep their raw text and convert on access, so
// malformed values read as zero instead of failing the line.
//
// Join is the inverse of Tokenize: rendering the blocks of any text and
// tokenizing the result again yields the same rendering.
package override
