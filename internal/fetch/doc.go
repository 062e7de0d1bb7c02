// Package fetch provides one-shot outbound HTTP requests for pull-only
// price sources whose certificates cannot be verified through the default
// trust store. Certificate and hostname validation are disabled on this
// client's transport only; verified traffic must use its own client.
package fetch
