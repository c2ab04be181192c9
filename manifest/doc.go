// Package manifest declares container registrations in YAML.
//
// A manifest names its services, their lifetimes and their declared
// dependencies; factories are looked up by name in a Registry when the
// manifest is applied to a di.Builder. Manifests can include other
// manifests by name, which lets a service graph be split across files:
//
//	name: shop
//	includes: [storage]
//	services:
//	  - key: orders
//	    lifetime: scoped
//	    depends_on: [db]
//	    root: true
//
// Specs turns a flattened manifest into graph input without any factories,
// so a graph can be validated offline.
package manifest
