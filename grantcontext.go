package grant

import "fmt"

// GrantContext is the persisted mapping associated with each issued
// artifact (authorization code, access token, or refresh token). Unlike
// Authorization, its expiry is ABSOLUTE seconds-since-epoch, since it is
// the value a Backend keeps around after the issuing request has finished.
type GrantContext struct {
	Client        *ClientID
	ResourceOwner *ResourceOwnerID
	ExpiryTime    int64
	Scope         Scope
}

// newGrantContext builds a GrantContext from an Authorization and an
// absolute expiry timestamp. Every GrantContext the engine issues is built
// here; Backends only rebuild the ones they have stored.
func newGrantContext(a Authorization, expiryAbsolute int64) GrantContext {
	return GrantContext{
		Client:        a.Client,
		ResourceOwner: a.ResourceOwner,
		ExpiryTime:    expiryAbsolute,
		Scope:         a.Scope,
	}
}

// Fields exposes the GrantContext as a generic key-value mapping using the
// literal field names client, resource_owner, expiry_time and scope. This
// exists solely at the Backend serialization boundary (e.g. a Redis value
// or a generic row encoding) — the engine and in-process Backends should
// use the typed fields directly.
func (g GrantContext) Fields() map[string]any {
	f := map[string]any{
		"expiry_time": g.ExpiryTime,
		"scope":       []string(g.Scope),
	}
	if g.Client != nil {
		f["client"] = string(*g.Client)
	}
	if g.ResourceOwner != nil {
		f["resource_owner"] = string(*g.ResourceOwner)
	}
	return f
}

// GrantContextFromFields rebuilds a GrantContext from the map produced by
// Fields. It tolerates the numeric and slice types that come out the other
// side of a JSON round trip into map[string]any (float64 instead of int64,
// []interface{} instead of []string), since that is the shape a Backend
// that stores GrantContexts as a generic map actually decodes.
func GrantContextFromFields(f map[string]any) (GrantContext, error) {
	var g GrantContext

	expiry, ok := f["expiry_time"]
	if !ok {
		return g, fmt.Errorf("grant: fields missing expiry_time")
	}
	switch v := expiry.(type) {
	case int64:
		g.ExpiryTime = v
	case float64:
		g.ExpiryTime = int64(v)
	default:
		return g, fmt.Errorf("grant: expiry_time has unexpected type %T", v)
	}

	if raw, ok := f["scope"]; ok {
		scope, err := scopeFromField(raw)
		if err != nil {
			return g, err
		}
		g.Scope = scope
	}

	if raw, ok := f["client"]; ok {
		s, ok := raw.(string)
		if !ok {
			return g, fmt.Errorf("grant: client has unexpected type %T", raw)
		}
		c := ClientID(s)
		g.Client = &c
	}

	if raw, ok := f["resource_owner"]; ok {
		s, ok := raw.(string)
		if !ok {
			return g, fmt.Errorf("grant: resource_owner has unexpected type %T", raw)
		}
		o := ResourceOwnerID(s)
		g.ResourceOwner = &o
	}

	return g, nil
}

func scopeFromField(raw any) (Scope, error) {
	switch v := raw.(type) {
	case nil:
		// A nil Scope encodes as JSON null.
		return nil, nil
	case []string:
		return Scope(v), nil
	case []interface{}:
		scope := make(Scope, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("grant: scope element has unexpected type %T", e)
			}
			scope[i] = s
		}
		return scope, nil
	default:
		return nil, fmt.Errorf("grant: scope has unexpected type %T", v)
	}
}

// expired reports whether g has passed its expiry relative to now.
func (g GrantContext) expired(now int64) bool {
	return g.ExpiryTime <= now
}
