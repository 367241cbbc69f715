// internal/endpoint/scenario_test.go
package endpoint

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tamzrod/iocp-gateway/internal/distributor"
)

type gatewayFixture struct {
	dist        *distributor.Distributor
	central     *Central
	centralLink *fakeLink
	devices     map[string]*Serial
	deviceLinks map[string]*fakeLink
}

func newGatewayFixture(labels ...string) *gatewayFixture {
	f := &gatewayFixture{
		dist:        distributor.New(zerolog.Nop()),
		centralLink: &fakeLink{},
		devices:     map[string]*Serial{},
		deviceLinks: map[string]*fakeLink{},
	}
	f.central = NewCentral(f.centralLink, f.dist, zerolog.Nop())
	f.dist.RegisterUpstream(f.central)

	for _, l := range labels {
		link := &fakeLink{}
		s := NewSerial(l, link, f.dist, zerolog.Nop())
		f.dist.RegisterDevice(s)
		f.devices[l] = s
		f.deviceLinks[l] = link
	}
	return f
}

func TestScenario_RegisterFilterAndEchoSuppression(t *testing.T) {
	f := newGatewayFixture("D", "E", "F")

	// D registers {10,20}; E and F register 10 as well.
	f.devices["D"].Receive([]byte("Arn.Inicio:10:20:\r\n"))
	f.devices["E"].Receive([]byte("Arn.Inicio:10:\r\n"))
	f.devices["F"].Receive([]byte("Arn.Inicio:10:30:\r\n"))

	assert.Equal(t, []string{"Arn.Inicio:10:20:", "Arn.Inicio:10:", "Arn.Inicio:10:30:"}, f.centralLink.sentTrimmed())

	// server pushes an update for 10 and 99
	f.central.Receive([]byte("Arn.Resp:10=5:99=1:\r\n"))

	assert.Equal(t, []string{"Arn.Resp:10=5:"}, f.deviceLinks["D"].sentTrimmed())
	assert.Equal(t, []string{"Arn.Resp:10=5:"}, f.deviceLinks["E"].sentTrimmed())
	assert.Equal(t, []string{"Arn.Resp:10=5:"}, f.deviceLinks["F"].sentTrimmed())

	// D sends its own update
	f.devices["D"].Receive([]byte("Arn.Resp:10=7:\r\n"))

	central := f.centralLink.sentTrimmed()
	assert.Equal(t, "Arn.Resp:10=7:", central[len(central)-1])

	assert.Equal(t, []string{"Arn.Resp:10=5:"}, f.deviceLinks["D"].sentTrimmed(), "no echo to the origin")
	assert.Equal(t, []string{"Arn.Resp:10=5:", "Arn.Resp:10=7:"}, f.deviceLinks["E"].sentTrimmed())
	assert.Equal(t, []string{"Arn.Resp:10=5:", "Arn.Resp:10=7:"}, f.deviceLinks["F"].sentTrimmed())
}

func TestScenario_PeerFilteringAppliesToDeviceBroadcast(t *testing.T) {
	f := newGatewayFixture("D", "E")
	f.devices["E"].Receive([]byte("Arn.Inicio:30:\r\n"))

	f.devices["D"].Receive([]byte("Arn.Resp:10=7:\r\n"))

	assert.Empty(t, f.deviceLinks["E"].sent())
}

func TestScenario_KeepAliveHandshake(t *testing.T) {
	f := newGatewayFixture("D", "E")

	f.central.Connected()
	assert.Equal(t, []string{"\r\n"}, f.centralLink.sent())
	assert.Equal(t, []string{"Arn.Vivo:"}, f.deviceLinks["D"].sentTrimmed())
	assert.Equal(t, []string{"Arn.Vivo:"}, f.deviceLinks["E"].sentTrimmed())

	// server keepalive is echoed back upstream only
	f.central.Receive([]byte("Arn.Vivo:\r\n"))
	assert.Equal(t, []string{"\r\n", "Arn.Vivo:\r\n"}, f.centralLink.sent())
	assert.Len(t, f.deviceLinks["D"].sent(), 1)

	// device keepalive is absorbed locally
	f.devices["D"].Receive([]byte("Arn.Vivo:\r\n"))
	assert.Len(t, f.centralLink.sent(), 2)
}

func TestScenario_UnregisteredDeviceCannotInject(t *testing.T) {
	f := newGatewayFixture("D")

	stray := NewSerial("X", &fakeLink{}, f.dist, zerolog.Nop())
	stray.Receive([]byte("Arn.Resp:10=1:\r\n"))

	assert.Empty(t, f.centralLink.sent())
	assert.Empty(t, f.deviceLinks["D"].sent())
}
