package domain

// ProtocolVersion is the multiplexing protocol version advertised by this implementation.
// Instances speaking a higher protocol version win the election.
const ProtocolVersion = "1.4.0"

// SourceDirectAPI is the integration source name of the direct API integration.
const SourceDirectAPI = "api"

// OperatingMode tells peers how an instance takes part in multiplexing.
type OperatingMode string

const (
	// OperatingModeMultiplexing instances are leader candidates and share the leader's fetch.
	OperatingModeMultiplexing OperatingMode = "multiplexing"
	// OperatingModePassive instances are discoverable followers that never lead.
	OperatingModePassive OperatingMode = "passive"
	// OperatingModeSingleton instances lead only themselves and are ignored by elections.
	OperatingModeSingleton OperatingMode = "singleton"
)

// IsMultiplexingCapable reports whether an instance in this mode can be elected.
func (m OperatingMode) IsMultiplexingCapable() bool {
	return m == OperatingModeMultiplexing
}

// Properties identify one instance. They are copied into every Hello message.
// Fields match the wire format: id, version, source, sourceVersion, sourceConfiguration, href, domain, fetchIdData.
type Properties struct {
	ID                  string         `json:"id"`
	Version             string         `json:"version"`
	Source              string         `json:"source"`
	SourceVersion       string         `json:"sourceVersion"`
	SourceConfiguration map[string]any `json:"sourceConfiguration,omitempty"`
	Href                string         `json:"href,omitempty"`
	Domain              string         `json:"domain,omitempty"`
	FetchIdData         FetchIdData    `json:"fetchIdData"`
}

// ConfigUpdate is a partial configuration applied by Instance.UpdateConfig.
type ConfigUpdate struct {
	SourceConfiguration map[string]any
	FetchIdData         *FetchIdData
}

// WithUpdate returns a copy of p with u merged in. Source configuration keys are merged one by one,
// fetch id data is replaced as a whole.
func (p Properties) WithUpdate(u ConfigUpdate) Properties {
	out := p
	if len(u.SourceConfiguration) > 0 {
		merged := make(map[string]any, len(p.SourceConfiguration)+len(u.SourceConfiguration))
		for k, v := range p.SourceConfiguration {
			merged[k] = v
		}
		for k, v := range u.SourceConfiguration {
			merged[k] = v
		}
		out.SourceConfiguration = merged
	}
	if u.FetchIdData != nil {
		out.FetchIdData = *u.FetchIdData
	}
	return out
}

// InstanceState is the coarse state an instance advertises in Hello messages.
// LeaderID is empty until the sender has completed (or canceled) its election.
type InstanceState struct {
	OperatingMode  OperatingMode `json:"operatingMode"`
	KnownInstances []string      `json:"knownInstances,omitempty"`
	LeaderID       string        `json:"leaderId,omitempty"`
}

// HelloMessage is broadcast on registration and answered with a unicast response.
type HelloMessage struct {
	Instance      Properties    `json:"instance"`
	IsResponse    bool          `json:"isResponse"`
	InstanceState InstanceState `json:"instanceState"`
}

// HelloMessageType is the envelope type of HelloMessage.
const HelloMessageType = "HelloMessage"
