// Package manifest loads grouping manifests: an ordered mapping of subfolder
// names to the file names expected inside them.
//
// JSON manifests use the shape {"Folder": {"1": "name", "2": "name"}} and
// YAML manifests the equivalent mapping. Arrays of names are accepted in
// place of the inner object. Document order is preserved for both folders
// and entries because grouping moves files in that order.
package manifest
