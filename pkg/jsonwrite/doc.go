// Package jsonwrite streams a [netlist.Design] as a JSON netlist document.
//
// # Overview
//
// The output follows the fixed netlist interchange layout consumed by
// downstream viewers and timing tools:
//
//	{
//	  "creator": "pnrjson v1.0.0 (git sha1 3f2a9c1)",
//	  "modules": {
//	    "top": {
//	      "settings": { ... },
//	      "attributes": { ... },
//	      "ports": {
//	        "data": {
//	          "direction": "input",
//	          "bits": [ 12, 13, "x", 15 ]
//	        }
//	      },
//	      "cells": {
//	        "and0": {
//	          "hide_name": 0,
//	          "type": "AND2",
//	          "parameters": { ... },
//	          "attributes": { ... },
//	          "port_directions": { "A": "input", ... },
//	          "connections": { "A": [ 12 ], "B": [ ] }
//	        }
//	      },
//	      "netnames": {
//	        "data[0]": {
//	          "hide_name": 0,
//	          "bits": [ 12 ] ,
//	          "attributes": { ... }
//	        }
//	      }
//	    }
//	  }
//	}
//
// Key names, key order, nesting and indentation are a compatibility
// contract. Every key is present even when its object is empty.
//
// # Streaming
//
// [Write] makes one forward pass over the design and writes directly to the
// sink. No document tree is built; the only per-export allocation that grows
// with the design is the port grouping done by [GroupPorts]. Buffering, if
// any, belongs to the sink. [ExportFile] buffers the file it opens.
//
// # Values
//
// [FormatValue] prints a 32-bit fully defined property as a bare signed
// decimal and everything else as a quoted string. [Quote] only doubles
// backslashes; set [Options].StrictQuotes to escape quotes and control
// characters as well.
//
// # Buses
//
// Ports named "base[N]" are regrouped into one entry per base name by
// [GroupPorts]. Missing positions are written as "x". A bit position that
// two ports claim is a corrupt design and panics.
//
// # Errors
//
// Every write returns an error. The first failure stops the pass and is
// returned from [Write] wrapped with code WRITE_FAILED; a partially written
// document is left on the sink. [Export] adapts this to the boolean
// success contract used by hosts and logs one diagnostic line.
package jsonwrite
