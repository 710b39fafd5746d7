// Package kinds provides the content kinds shipped with pagetree. Each kind
// is a contenttypes.Class; deployments pick the ones they need and register
// them on their base during bootstrap.
package kinds
