// Package services defines the stable error taxonomy shared by the
// synchronization pipeline.
//
// Stages wrap failures with Wrap so the orchestrator can classify them via
// errors.Is without parsing messages. CodeFor converts any error into the
// result code exposed on the external surface.
package services
