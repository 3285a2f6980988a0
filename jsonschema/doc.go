// Package jsonschema compiles draft-era JSON Schema documents and
// validates JSON instances against them.
//
// Schemas and instances are plain fastjson values. A document is parsed
// once, registered in a Registry so references can cross document
// boundaries, and then validated against any number of instances:
//
//	doc, err := jsonschema.ParseBytes(schemaBytes, "https://example.com/s")
//	if err != nil {
//		return err
//	}
//	reg := jsonschema.NewRegistry()
//	if err := reg.Register(doc); err != nil {
//		return err
//	}
//	for _, violation := range doc.Validate(instance, reg) {
//		fmt.Println(violation)
//	}
//
// Validation is pure and accumulates the complete violation list in one
// pass; it never aborts on the first failure. Once registration is done
// the registry and its documents are immutable, so a single registry can
// serve concurrent validations without locking.
package jsonschema
