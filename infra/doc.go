// Package infra contains the technical adapters: the sqlite alert store, the
// redbus fare client, the Expo push client, metrics exporters and the MQTT
// event bridge. These packages should depend only on the interfaces defined
// in the core packages.
package infra
