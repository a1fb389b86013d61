package session

import (
	"github.com/pion/interceptor"
	pion "github.com/pion/webrtc/v4"

	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/utils"
)

// EngineHook lets a media source register its codecs on the PeerConnection's
// media engine before construction. Nil means pion's defaults.
type EngineHook func(*pion.MediaEngine) error

// NewPeerConnection builds a PeerConnection from the configured ICE servers.
// The relay-only transport policy is forced when the config demands it or
// the local network heuristics suggest direct paths will not work.
func NewPeerConnection(cfg *config.Config, hook EngineHook) (*pion.PeerConnection, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && (cfg.ForceRelay || utils.ShouldForceRelay()) {
		policy = pion.ICETransportPolicyRelay
	}

	rtcConfig := pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	}

	if hook == nil {
		pc, err := pion.NewPeerConnection(rtcConfig)
		if err != nil {
			return nil, NewError("create peer connection", err)
		}
		return pc, nil
	}

	mediaEngine := &pion.MediaEngine{}
	if err := hook(mediaEngine); err != nil {
		return nil, NewError("populate media engine", err)
	}

	registry := &interceptor.Registry{}
	if err := pion.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, NewError("register interceptors", err)
	}

	api := pion.NewAPI(
		pion.WithMediaEngine(mediaEngine),
		pion.WithInterceptorRegistry(registry),
	)
	pc, err := api.NewPeerConnection(rtcConfig)
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}
