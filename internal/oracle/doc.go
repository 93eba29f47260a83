// Package oracle defines the contracts of the external classification,
// decision, and alias-verification oracles together with the result types
// they return, and ships an LLM-backed implementation of all three.
//
// Oracles are treated as expensive black boxes: every answer carries a Usage
// so callers can account for cost whether or not the answer was useful.
package oracle
