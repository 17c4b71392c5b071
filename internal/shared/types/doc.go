// Package types provides shared data structures for the metrology service.
//
// Core Types:
//   - Service: Service provider definition
//   - Tool: Service tool definition
//   - Parameter: Tool parameter description
//   - Context: Execution context for operations
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - DiscoverRequest: Service discovery by free-text query
//
// Example Usage:
//
//	req := types.ExecuteRequest{
//	    ToolID: "uncertainty.propagate",
//	    Params: map[string]interface{}{"op": "add", "a": a, "b": b},
//	}
package types
