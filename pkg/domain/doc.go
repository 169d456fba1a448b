/*
Package domain contains the core domain models of the Markov algorithm interpreter.

It defines the alphabet a scheme is written over, the formulas it is made of, and
the runtime values produced while a word is rewritten. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Alphabet: Main characters (legal in words) plus extension characters (legal in formulas only).
  - Syntax: The delimiter and final marker reserved by the definition format.
  - Formula: A pattern, a replacement and a flag marking it final.
  - Step / Result: What one rewrite and a full application produce.
  - Session: A stepwise application persisted between calls.
*/
package domain
