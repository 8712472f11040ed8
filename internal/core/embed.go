package core

import (
	"fmt"
	"strings"

	"marquee/internal/clients/metadata"
)

// EmbedURL is the player iframe source for one catalog item.
func EmbedURL(base string, mediaType metadata.MediaType, id int) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimSuffix(base, "/"), mediaType.Path(), id)
}

// EmbedPermissions lists what the third-party player iframe may do.
type EmbedPermissions struct {
	Allow   []string
	Sandbox []string
}

// PlayerPermissions grants playback capabilities only. No popups, forms or
// top-level navigation.
var PlayerPermissions = EmbedPermissions{
	Allow:   []string{"autoplay", "fullscreen", "picture-in-picture", "encrypted-media"},
	Sandbox: []string{"allow-scripts", "allow-same-origin", "allow-presentation"},
}

// AllowAttr renders the iframe allow attribute.
func (p EmbedPermissions) AllowAttr() string {
	return strings.Join(p.Allow, "; ")
}

// SandboxAttr renders the iframe sandbox attribute.
func (p EmbedPermissions) SandboxAttr() string {
	return strings.Join(p.Sandbox, " ")
}
