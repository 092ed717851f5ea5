package umat

// Enum is implemented by every enumerated field type. Members returns the
// member names in ordinal order.
type Enum interface {
	EnumMembers() []string
}

// enumName returns the member name of ordinal i, or "" when out of range.
func enumName(members []string, i uint8) string {
	if int(i) < len(members) {
		return members[i]
	}
	return ""
}

// TexClampMode selects texture addressing.
type TexClampMode uint8

// Texture clamp modes.
const (
	TCWrap TexClampMode = iota
	TCClamp
)

var texClampModeNames = []string{"TC_Wrap", "TC_Clamp"}

func (TexClampMode) EnumMembers() []string          { return texClampModeNames }
func (e TexClampMode) String() string               { return enumName(texClampModeNames, uint8(e)) }
func (e TexClampMode) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// TextureFormat is the stored pixel format of a bitmap.
type TextureFormat uint8

// Texture formats.
const (
	TEXFP8 TextureFormat = iota
	TEXFRGBA7
	TEXFRGB16
	TEXFDXT1
	TEXFRGB8
	TEXFRGBA8
	TEXFNoData
	TEXFDXT3
	TEXFDXT5
	TEXFL8
	TEXFG16
	TEXFRRRGGGBBB
)

var textureFormatNames = []string{
	"TEXF_P8", "TEXF_RGBA7", "TEXF_RGB16", "TEXF_DXT1", "TEXF_RGB8", "TEXF_RGBA8",
	"TEXF_NODATA", "TEXF_DXT3", "TEXF_DXT5", "TEXF_L8", "TEXF_G16", "TEXF_RRRGGGBBB",
}

func (TextureFormat) EnumMembers() []string          { return textureFormatNames }
func (e TextureFormat) String() string               { return enumName(textureFormatNames, uint8(e)) }
func (e TextureFormat) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// ColorFadeType selects the FadeColor interpolation curve.
type ColorFadeType uint8

// Color fade types.
const (
	FCLinear ColorFadeType = iota
	FCSinusoidal
)

var colorFadeTypeNames = []string{"FC_Linear", "FC_Sinusoidal"}

func (ColorFadeType) EnumMembers() []string          { return colorFadeTypeNames }
func (e ColorFadeType) String() string               { return enumName(colorFadeTypeNames, uint8(e)) }
func (e ColorFadeType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// CombineOperation selects how a Combiner produces its color.
type CombineOperation uint8

// Combiner color operations.
const (
	COUseColorFromMaterial1 CombineOperation = iota
	COUseColorFromMaterial2
	COMultiply
	COAdd
	COSubtract
	COAlphaBlendWithMask
	COAddWithMaskModulation
	COUseColorFromMask
)

var combineOperationNames = []string{
	"CO_Use_Color_From_Material1", "CO_Use_Color_From_Material2", "CO_Multiply", "CO_Add",
	"CO_Subtract", "CO_AlphaBlend_With_Mask", "CO_Add_With_Mask_Modulation", "CO_Use_Color_From_Mask",
}

func (CombineOperation) EnumMembers() []string          { return combineOperationNames }
func (e CombineOperation) String() string               { return enumName(combineOperationNames, uint8(e)) }
func (e CombineOperation) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// AlphaOperation selects how a Combiner produces its alpha.
type AlphaOperation uint8

// Combiner alpha operations.
const (
	AOUseMask AlphaOperation = iota
	AOMultiply
	AOAdd
	AOUseAlphaFromMaterial1
	AOUseAlphaFromMaterial2
)

var alphaOperationNames = []string{
	"AO_Use_Mask", "AO_Multiply", "AO_Add", "AO_Use_Alpha_From_Material1", "AO_Use_Alpha_From_Material2",
}

func (AlphaOperation) EnumMembers() []string          { return alphaOperationNames }
func (e AlphaOperation) String() string               { return enumName(alphaOperationNames, uint8(e)) }
func (e AlphaOperation) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// FrameBufferBlending is the FinalBlend framebuffer operation.
type FrameBufferBlending uint8

// Framebuffer blending modes.
const (
	FBOverwrite FrameBufferBlending = iota
	FBModulate
	FBAlphaBlend
	FBAlphaModulateMightNotFogCorrectly
	FBTranslucent
	FBDarken
	FBBrighten
	FBInvisible
	FBShadowBlend
)

var frameBufferBlendingNames = []string{
	"FB_Overwrite", "FB_Modulate", "FB_AlphaBlend", "FB_AlphaModulate_MightNotFogCorrectly",
	"FB_Translucent", "FB_Darken", "FB_Brighten", "FB_Invisible", "FB_ShadowBlend",
}

func (FrameBufferBlending) EnumMembers() []string          { return frameBufferBlendingNames }
func (e FrameBufferBlending) String() string               { return enumName(frameBufferBlendingNames, uint8(e)) }
func (e FrameBufferBlending) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// TexCoordSrc selects the coordinate source of a texture modifier.
type TexCoordSrc uint8

// Texture coordinate sources. The first eight select vertex UV streams.
const (
	TCSStream0 TexCoordSrc = iota
	TCSStream1
	TCSStream2
	TCSStream3
	TCSStream4
	TCSStream5
	TCSStream6
	TCSStream7
	TCSWorldCoords
	TCSCameraCoords
	TCSWorldEnvMapCoords
	TCSCameraEnvMapCoords
	TCSProjectorCoords
	TCSNoChange
)

var texCoordSrcNames = []string{
	"TCS_Stream0", "TCS_Stream1", "TCS_Stream2", "TCS_Stream3",
	"TCS_Stream4", "TCS_Stream5", "TCS_Stream6", "TCS_Stream7",
	"TCS_WorldCoords", "TCS_CameraCoords", "TCS_WorldEnvMapCoords",
	"TCS_CameraEnvMapCoords", "TCS_ProjectorCoords", "TCS_NoChange",
}

func (TexCoordSrc) EnumMembers() []string          { return texCoordSrcNames }
func (e TexCoordSrc) String() string               { return enumName(texCoordSrcNames, uint8(e)) }
func (e TexCoordSrc) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// IsStream reports whether the source is one of the eight UV streams.
func (e TexCoordSrc) IsStream() bool { return e <= TCSStream7 }

// TexCoordCount is the dimensionality of generated coordinates.
type TexCoordCount uint8

// Texture coordinate counts.
const (
	TCN2DCoords TexCoordCount = iota
	TCN3DCoords
	TCN4DCoords
)

var texCoordCountNames = []string{"TCN_2DCoords", "TCN_3DCoords", "TCN_4DCoords"}

func (TexCoordCount) EnumMembers() []string          { return texCoordCountNames }
func (e TexCoordCount) String() string               { return enumName(texCoordCountNames, uint8(e)) }
func (e TexCoordCount) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// TexEnvMapType selects the environment map space.
type TexEnvMapType uint8

// Environment map types.
const (
	EMWorldSpace TexEnvMapType = iota
	EMCameraSpace
)

var texEnvMapTypeNames = []string{"EM_WorldSpace", "EM_CameraSpace"}

func (TexEnvMapType) EnumMembers() []string          { return texEnvMapTypeNames }
func (e TexEnvMapType) String() string               { return enumName(texEnvMapTypeNames, uint8(e)) }
func (e TexEnvMapType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// TexOscillationType selects how a TexOscillator moves one axis.
type TexOscillationType uint8

// Oscillation types.
const (
	OTPan TexOscillationType = iota
	OTStretch
	OTStretchRepeat
	OTJitter
)

var texOscillationTypeNames = []string{"OT_Pan", "OT_Stretch", "OT_StretchRepeat", "OT_Jitter"}

func (TexOscillationType) EnumMembers() []string          { return texOscillationTypeNames }
func (e TexOscillationType) String() string               { return enumName(texOscillationTypeNames, uint8(e)) }
func (e TexOscillationType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// IsStretch reports whether the oscillation scales rather than translates.
func (e TexOscillationType) IsStretch() bool { return e == OTStretch || e == OTStretchRepeat }

// TexRotationType selects how a TexRotator angle evolves.
type TexRotationType uint8

// Rotation types.
const (
	TRFixedRotation TexRotationType = iota
	TRConstantlyRotating
	TROscillatingRotation
)

var texRotationTypeNames = []string{"TR_FixedRotation", "TR_ConstantlyRotating", "TR_OscillatingRotation"}

func (TexRotationType) EnumMembers() []string          { return texRotationTypeNames }
func (e TexRotationType) String() string               { return enumName(texRotationTypeNames, uint8(e)) }
func (e TexRotationType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// OutputBlending is the Shader output blending mode.
type OutputBlending uint8

// Shader output blending modes.
const (
	OBNormal OutputBlending = iota
	OBMasked
	OBModulate
	OBTranslucent
	OBInvisible
	OBBrighten
	OBDarken
)

var outputBlendingNames = []string{
	"OB_Normal", "OB_Masked", "OB_Modulate", "OB_Translucent", "OB_Invisible", "OB_Brighten", "OB_Darken",
}

func (OutputBlending) EnumMembers() []string          { return outputBlendingNames }
func (e OutputBlending) String() string               { return enumName(outputBlendingNames, uint8(e)) }
func (e OutputBlending) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// SequenceAction is the action of one MaterialSequence step.
type SequenceAction uint8

// Sequence actions.
const (
	MSAShowMaterial SequenceAction = iota
	MSAFadeToMaterial
)

var sequenceActionNames = []string{"MSA_ShowMaterial", "MSA_FadeToMaterial"}

func (SequenceAction) EnumMembers() []string          { return sequenceActionNames }
func (e SequenceAction) String() string               { return enumName(sequenceActionNames, uint8(e)) }
func (e SequenceAction) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
