// Package core defines the shared data model of the execution core: messages
// and their content parts, per-run agent state, the step directive protocol
// spoken between step programs and the engine, child run outcomes, the error
// taxonomy and the contracts of the external collaborators (completion
// service, tool dispatcher, state store).
//
// Everything here is plain data plus small helpers; orchestration lives in
// the engine package, history reduction in compact and fragment splitting in
// chunk.
package core
