// Package plugin provides a generic capability registry shared by the
// discovery and control subsystems.
//
// A capability is any type that self-reports a unique name. Capability
// implementations are contributed as factories, typically appended to a
// package-level FactorySet from a provider package's init function, and
// loaded exactly once at startup. A factory failure never aborts its
// siblings, and duplicate names keep the first registration.
package plugin
