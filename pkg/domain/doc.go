/*
Package domain contains the core models of a clinical pathway.

A pathway is an authored decision tree for one condition. It is compiled once into an
immutable arena of effective nodes and then shared by any number of consultations, each
of which owns a Cursor. This package is kept pure: no I/O, no parsing, no persistence.

# Key Entities

  - Node: a closed union of DecisionNode, ActionNode and TreatmentNode.
  - Branch: one canonical outgoing edge of a decision, whatever encoding it was authored in.
  - Pathway: metadata, notes, PGD records and the node arena rooted at RootID.
  - PatientHistory: optional advisory facts; never used to select a branch.
  - Cursor: the per-consultation position (current node and visited path).
  - View: what a host needs to present the current node.
*/
package domain
