package protocol_test

import (
	"testing"

	"intheback.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	ok := []struct {
		typ string
		raw string
	}{
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","player_name":"alex"}`},
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","player_name":"alex","player_id":"P1"}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"select","slot":3}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","id":"a1","kind":"interact","action":"RIGHT_CLICK_AIR"}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"inventory","slot":4},"to":{"area":"view","slot":53}}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"grid","slot":0},"shift":true}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"inventory","slot":0},"to":{"area":"grid","slot":4},"count":1}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"close"}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"craft"}`},
		{protocol.TypeState, `{"anything":"goes"}`},
	}
	for _, c := range ok {
		if err := v.Validate(c.typ, []byte(c.raw)); err != nil {
			t.Fatalf("%s should validate: %v", c.raw, err)
		}
	}

	bad := []struct {
		typ string
		raw string
	}{
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0"}`},
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","player_name":""}`},
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","player_name":"a","extra":1}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"fly"}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"select"}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"select","slot":9}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"inventory","slot":1}}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"chest","slot":1},"to":{"area":"view","slot":0}}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"move","from":{"area":"inventory","slot":0},"to":{"area":"grid","slot":4},"count":-1}`},
		{protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","kind":"interact","action":"JUMP"}`},
		{protocol.TypeAct, `not json`},
	}
	for _, c := range bad {
		if err := v.Validate(c.typ, []byte(c.raw)); err == nil {
			t.Fatalf("%s should be rejected", c.raw)
		}
	}
}
