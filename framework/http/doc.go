// Package http exposes a read-only view of a container over HTTP.
//
// # Response
//
// Response wraps http.ResponseWriter with JSON envelope helpers:
//
//	res := gohttp.NewResponse(w)
//	res.Success(bindings)             // 200 {"data": ...}
//	res.NotFound()                    // 404 {"message": "Not found."}
//	res.Error(http.StatusConflict, m) // {"message": m}
//
// # Inspector
//
// Inspector serves the bindings, type descriptors and cache state of a
// container. It never resolves anything itself, so browsing it does not
// create or keep alive shared instances.
//
//	GET /container/bindings        sorted entries
//	GET /container/bindings/{id}   one entry with its overrides
//	GET /container/types/{id}      descriptor reported by the introspector
//	GET /container/stats           entry, live instance and build counts
//
//	ins := gohttp.NewInspector(c, log)
//	http.ListenAndServe(":8000", ins)
package http
