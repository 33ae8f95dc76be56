// Package catalog loads extension descriptor catalogs.
//
// A catalog is a YAML file listing the custom tags a project can use:
//
//	extensions:
//	  - tag: card
//	    type: Card
//	    origin: example.com/ui
//	    attributes:
//	      - name: title
//	      - name: count
//	        type: int
//
// Files are validated against an embedded JSON Schema before they are
// decoded, and several files merge in the order given.
package catalog
