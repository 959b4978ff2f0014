// Package proxy launches the Cloud SQL Proxy as a detached background process.
//
// The proxy must outlive the CI step that starts it, so the supervisor never
// waits on the child. Exit and error events are observed only for logging;
// readiness is decided by the socket package watching the socket root.
//
// # Arguments
//
// BuildArgs produces the proxy command line in a fixed order:
//
//	<instance> --gcloud-auth [--address A] [--port P] [--private-ip I] --unix-socket <root>
//
// Optional flags are omitted when their value is blank.
//
// # Launching
//
//	if err := proxy.PrepareSocketRoot(fs, root); err != nil {
//	    return err
//	}
//	sup := proxy.NewSupervisor(starter)
//	h, err := sup.Launch(binPath, proxy.BuildArgs(opts))
//	if err != nil {
//	    return err
//	}
//	// poll root for the socket
package proxy
