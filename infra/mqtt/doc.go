// Package mqtt provides the broker connectivity of the measurement agent:
// a wrapper around the Eclipse Paho client that keeps the command topic
// subscribed across reconnects, payload codecs for the response messages,
// and the publisher delivering one message per sample.
package mqtt
