package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
)

/**
 * @brief Represents a texture. Textures live in fixed slots of the texture
 * system, so the type holds no Go pointers.
 */
type Texture struct {
	/** @brief The slot index of the texture, InvalidID when the slot is free. */
	ID uint32
	/** @brief The backend handle of the uploaded texture. */
	InternalID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Indicates if the texture has transparency. */
	HasTransparency bool
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	name [TextureNameMaxLength]byte
}

func (t *Texture) Name() string { return nameString(t.name[:]) }

func (t *Texture) SetName(name string) bool { return setName(t.name[:], name) }

func (t *Texture) Handle() uint32 { return t.ID }

func (t *Texture) SetHandle(id uint32) { t.ID = id }
