package publish

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewDestination checks bucket naming and versioned prefix assembly.
func TestNewDestination(t *testing.T) {
	t.Parallel()

	dest := NewDestination("solutions", "webchat", "v2.1.0", "eu-west-1")
	require.Equal(t, "solutions-eu-west-1", dest.Bucket)
	require.Equal(t, "webchat/v2.1.0", dest.Prefix)
	require.Equal(t, "eu-west-1", dest.Region)
}

// TestDestination_Key ensures every coordinate participates in the identity string.
func TestDestination_Key(t *testing.T) {
	t.Parallel()

	base := NewDestination("solutions", "webchat", "v2.1.0", "eu-west-1")

	other := base
	other.Bucket = "solutions-us-east-1"
	require.NotEqual(t, base.Key(), other.Key())

	other = base
	other.Prefix = "webchat/v2.2.0"
	require.NotEqual(t, base.Key(), other.Key())

	other = base
	other.Region = "us-east-1"
	require.NotEqual(t, base.Key(), other.Key())

	require.Equal(t, base.Key(), NewDestination("solutions", "webchat", "v2.1.0", "eu-west-1").Key())
}

// TestDestination_ObjectKeyAndURL checks key joining and URL rendering.
func TestDestination_ObjectKeyAndURL(t *testing.T) {
	t.Parallel()

	dest := NewDestination("solutions", "webchat", "v2.1.0", "eu-west-1")
	key := dest.ObjectKey("extension", "deadbeefdeadbeef", "extension.zip")
	require.Equal(t, "webchat/v2.1.0/extension/deadbeefdeadbeef/extension.zip", key)
	require.Equal(t,
		"https://solutions-eu-west-1.s3.eu-west-1.amazonaws.com/"+key,
		dest.ObjectURL(key))
}
