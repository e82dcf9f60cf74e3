// Package config loads vtree.yaml, the configuration of the vtree CLI and
// preview server.
//
// # Configuration File Structure
//
//	reconcile:
//	  propPolicy: legacy     # or strict
//	  eventPrefix: "on"
//	  classProp: className
//	  classAttr: class
//	log:
//	  level: info
//	metrics:
//	  namespace: vtree
//	preview:
//	  addr: localhost:7070
//	snapshot:
//	  store: file            # or s3
//	  dir: .vtree/snapshots
//	  s3:
//	    bucket: my-bucket
//	    prefix: snapshots/
//	    region: us-east-1
//	    endpoint: http://localhost:9000
//	    pathStyle: true
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    return err
//	}
//	r := reconcile.New(doc, cfg.ReconcileOptions()...)
package config
