// Package harness runs YAML scenarios against a fresh logos instance.
//
// Unlike unit tests, a scenario drives the public operations end to end
// (invoke, compose, define, law checks) and asserts on the journal trace
// they leave behind.
//
// # Scenario Format
//
//	name: define_and_explore
//	description: "What this scenario validates"
//	specs: specs            # optional CUE spec dir, relative to the file
//	observer: { name: ada, archetype: architect }
//	steps:
//	  - invoke: world.house.manifest
//	    args: { mood: calm }
//	    expect:
//	      result: { kind: placeholder }
//	  - compose: [world.door.open, world.door.close]
//	    input: "knock"
//	  - define: concept.shelter
//	    extends: [concept.entity]
//	    observer: { name: soc, archetype: philosopher }
//	  - laws: [world.door.open, world.door.close, world.door.lock]
//	    input: 1
//	  - invoke: world.house.blueprint
//	    observer: { name: sappho, archetype: poet }
//	    expect: { error: AffordanceError }
//	assertions:
//	  - type: trace_contains
//	    subject: world.house.manifest
//	  - type: trace_order
//	    subjects: [world.house.manifest, concept.shelter]
//	  - type: trace_count
//	    subject: world.house.blueprint
//	    count: 1
//	  - type: lineage
//	    handle: concept.shelter
//	    depth: 2
//	    affordances: [identity, mutable]
//	  - type: lattice_acyclic
//
// # Deterministic Execution
//
// Every run uses an in-memory journal, numbered spans (span-0001, ...)
// from testutil.SequenceSpanGenerator and a stepping clock from
// testutil.DeterministicTime, so the same scenario always produces the
// same trace. RunWithGolden compares that trace with a goldie snapshot.
package harness
