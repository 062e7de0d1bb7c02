// Package feed maintains the one persistent subscription to the remote
// push-price feed.
//
// The Supervisor owns the whole connection lifecycle: dial, send the fixed
// subscription message, receive frames, detect failure, wait a fixed
// backoff delay, reconnect. Retries are unconditional and unlimited; the
// supervisor never surfaces a terminal failure, it only logs and tries
// again until its context is cancelled.
//
// The feed endpoint presents a certificate the default trust store cannot
// verify, so the production dialer disables certificate validation. That
// exception is confined to WSDialer; nothing else in the process reuses it.
package feed
