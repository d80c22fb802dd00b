package api

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gorilla/mux"
)

// PrintRoutes walks through all routes registered in the router and writes
// one line per route to w.
func PrintRoutes(w io.Writer, r *mux.Router) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH")

	err := r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// Subrouters registered with an empty prefix have no path of their own.
			return nil
		}
		if route.GetHandler() == nil {
			return nil
		}

		// If no methods are specified, assume all methods
		methodStr := "ANY"
		if methods, err := route.GetMethods(); err == nil && len(methods) > 0 {
			methodStr = strings.Join(methods, ",")
		}

		fmt.Fprintf(tw, "%s\t%s\n", methodStr, pathTemplate)
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}
