package umat

// Material is one typed material record. Records are created by the reader
// and never mutated afterwards.
//
// Types outside this package can satisfy Material by embedding MaterialBase.
type Material interface {
	// Ref returns the reference identifying the record itself.
	Ref() Reference
	// TypeName returns the registry name of the record type.
	TypeName() string

	base() *MaterialBase
}

// MaterialBase holds the fields shared by every material record.
type MaterialBase struct {
	Reference        Reference  `prop:"-" json:"reference" yaml:"reference"`
	FallbackMaterial *Reference `prop:"FallbackMaterial" json:"fallbackMaterial,omitempty" yaml:"fallbackMaterial,omitempty"`
}

// Ref returns the record's own reference.
func (b *MaterialBase) Ref() Reference { return b.Reference }

func (b *MaterialBase) base() *MaterialBase { return b }

// BitmapMaterial holds the fields shared by bitmap-backed records.
type BitmapMaterial struct {
	MaterialBase
	Format     TextureFormat `prop:"Format"`
	UClampMode TexClampMode  `prop:"UClampMode"`
	VClampMode TexClampMode  `prop:"VClampMode"`
	UBits      int           `prop:"UBits"`
	VBits      int           `prop:"VBits"`
	USize      int           `prop:"USize"`
	VSize      int           `prop:"VSize"`
	UClamp     int           `prop:"UClamp"`
	VClamp     int           `prop:"VClamp"`
}

// Texture is an image-backed material.
type Texture struct {
	BitmapMaterial
	Detail             *Reference `prop:"Detail"`
	DetailScale        float64    `prop:"DetailScale"`
	MaxColor           Color      `prop:"MaxColor"`
	Masked             bool       `prop:"bMasked"`
	AlphaTexture       bool       `prop:"bAlphaTexture"`
	TwoSided           bool       `prop:"bTwoSided"`
	HighColorQuality   bool       `prop:"bHighColorQuality"`
	HighTextureQuality bool       `prop:"bHighTextureQuality"`
	Realtime           bool       `prop:"bRealtime"`
	ParametricLODSet   int        `prop:"LODSet"`
	AnimationNext      *Reference `prop:"AnimNext"`
	MinFrameRate       float64    `prop:"MinFrameRate"`
	MaxFrameRate       float64    `prop:"MaxFrameRate"`
}

// NewTexture returns a Texture with engine defaults.
func NewTexture() *Texture {
	return &Texture{DetailScale: 8, MaxColor: RGBA(255, 255, 255, 255)}
}

// TypeName returns "Texture".
func (*Texture) TypeName() string { return "Texture" }

// Cubemap is a six-faced environment texture.
type Cubemap struct {
	Texture
	Faces []*Reference `prop:"Faces"`
}

// NewCubemap returns a Cubemap with engine defaults.
func NewCubemap() *Cubemap {
	return &Cubemap{Texture: *NewTexture()}
}

// TypeName returns "Cubemap".
func (*Cubemap) TypeName() string { return "Cubemap" }

// ConstantColor is a single flat color.
type ConstantColor struct {
	MaterialBase
	Color Color `prop:"Color"`
}

// NewConstantColor returns a ConstantColor with engine defaults.
func NewConstantColor() *ConstantColor { return &ConstantColor{} }

// TypeName returns "ConstantColor".
func (*ConstantColor) TypeName() string { return "ConstantColor" }

// FadeColor fades between two colors over time.
type FadeColor struct {
	MaterialBase
	Color1        Color         `prop:"Color1"`
	Color2        Color         `prop:"Color2"`
	FadePeriod    float64       `prop:"FadePeriod"`
	FadeOffset    float64       `prop:"FadeOffset"`
	ColorFadeType ColorFadeType `prop:"ColorFadeType"`
}

// NewFadeColor returns a FadeColor with engine defaults.
func NewFadeColor() *FadeColor { return &FadeColor{} }

// TypeName returns "FadeColor".
func (*FadeColor) TypeName() string { return "FadeColor" }

// Shader composes diffuse, opacity, specular and self-illumination inputs.
type Shader struct {
	MaterialBase
	Diffuse                       *Reference     `prop:"Diffuse"`
	Opacity                       *Reference     `prop:"Opacity"`
	Specular                      *Reference     `prop:"Specular"`
	SpecularityMask               *Reference     `prop:"SpecularityMask"`
	SelfIllumination              *Reference     `prop:"SelfIllumination"`
	SelfIlluminationMask          *Reference     `prop:"SelfIlluminationMask"`
	Detail                        *Reference     `prop:"Detail"`
	DetailScale                   float64        `prop:"DetailScale"`
	OutputBlending                OutputBlending `prop:"OutputBlending"`
	TwoSided                      bool           `prop:"TwoSided"`
	Wireframe                     bool           `prop:"Wireframe"`
	ModulateStaticLighting2X      bool           `prop:"ModulateStaticLighting2X"`
	PerformLightingOnSpecularPass bool           `prop:"PerformLightingOnSpecularPass"`
	ModulateSpecular2X            bool           `prop:"ModulateSpecular2X"`
}

// NewShader returns a Shader with engine defaults.
func NewShader() *Shader { return &Shader{DetailScale: 8} }

// TypeName returns "Shader".
func (*Shader) TypeName() string { return "Shader" }

// Modifier holds the single wrapped material shared by modifier records.
type Modifier struct {
	MaterialBase
	Material *Reference `prop:"Material"`
}

// ColorModifier tints its material by a constant color.
type ColorModifier struct {
	Modifier
	Color          Color `prop:"Color"`
	RenderTwoSided bool  `prop:"RenderTwoSided"`
	AlphaBlend     bool  `prop:"AlphaBlend"`
}

// NewColorModifier returns a ColorModifier with engine defaults.
func NewColorModifier() *ColorModifier {
	return &ColorModifier{Color: RGBA(255, 255, 255, 255)}
}

// TypeName returns "ColorModifier".
func (*ColorModifier) TypeName() string { return "ColorModifier" }

// FinalBlend sets framebuffer state for its material.
type FinalBlend struct {
	Modifier
	FrameBufferBlending FrameBufferBlending `prop:"FrameBufferBlending"`
	ZWrite              bool                `prop:"ZWrite"`
	ZTest               bool                `prop:"ZTest"`
	AlphaTest           bool                `prop:"AlphaTest"`
	TwoSided            bool                `prop:"TwoSided"`
	AlphaRef            int                 `prop:"AlphaRef"`
}

// NewFinalBlend returns a FinalBlend with engine defaults.
func NewFinalBlend() *FinalBlend { return &FinalBlend{ZWrite: true, ZTest: true} }

// TypeName returns "FinalBlend".
func (*FinalBlend) TypeName() string { return "FinalBlend" }

// OpacityModifier replaces the alpha of its material.
type OpacityModifier struct {
	Modifier
	Opacity             *Reference `prop:"Opacity"`
	OverrideTexModifier bool       `prop:"bOverrideTexModifier"`
}

// NewOpacityModifier returns an OpacityModifier with engine defaults.
func NewOpacityModifier() *OpacityModifier { return &OpacityModifier{} }

// TypeName returns "OpacityModifier".
func (*OpacityModifier) TypeName() string { return "OpacityModifier" }

// Combiner combines two materials and a mask.
type Combiner struct {
	MaterialBase
	CombineOperation CombineOperation `prop:"CombineOperation"`
	AlphaOperation   AlphaOperation   `prop:"AlphaOperation"`
	Material1        *Reference       `prop:"Material1"`
	Material2        *Reference       `prop:"Material2"`
	Mask             *Reference       `prop:"Mask"`
	InvertMask       bool             `prop:"InvertMask"`
	Modulate2X       bool             `prop:"Modulate2X"`
	Modulate4X       bool             `prop:"Modulate4X"`
}

// NewCombiner returns a Combiner with engine defaults.
func NewCombiner() *Combiner { return &Combiner{} }

// TypeName returns "Combiner".
func (*Combiner) TypeName() string { return "Combiner" }

// TexModifier holds the coordinate-source fields shared by texture modifiers.
type TexModifier struct {
	Modifier
	TexCoordSource    TexCoordSrc   `prop:"TexCoordSource"`
	TexCoordCount     TexCoordCount `prop:"TexCoordCount"`
	TexCoordProjected bool          `prop:"TexCoordProjected"`
}

func newTexModifier() TexModifier {
	return TexModifier{TexCoordSource: TCSNoChange}
}

// TexCoordSource selects a UV channel for its material.
type TexCoordSource struct {
	TexModifier
	SourceChannel int `prop:"SourceChannel"`
}

// NewTexCoordSource returns a TexCoordSource with engine defaults.
func NewTexCoordSource() *TexCoordSource {
	return &TexCoordSource{TexModifier: newTexModifier()}
}

// TypeName returns "TexCoordSource".
func (*TexCoordSource) TypeName() string { return "TexCoordSource" }

// TexEnvMap generates environment-mapping coordinates.
type TexEnvMap struct {
	TexModifier
	EnvMapType TexEnvMapType `prop:"EnvMapType"`
}

// NewTexEnvMap returns a TexEnvMap with engine defaults.
func NewTexEnvMap() *TexEnvMap {
	m := &TexEnvMap{TexModifier: newTexModifier(), EnvMapType: EMCameraSpace}
	m.TexCoordSource = TCSCameraEnvMapCoords
	m.TexCoordCount = TCN3DCoords
	return m
}

// TypeName returns "TexEnvMap".
func (*TexEnvMap) TypeName() string { return "TexEnvMap" }

// TexOscillator animates coordinates with a per-axis oscillation.
type TexOscillator struct {
	TexModifier
	UOscillationRate      float64            `prop:"UOscillationRate"`
	VOscillationRate      float64            `prop:"VOscillationRate"`
	UOscillationPhase     float64            `prop:"UOscillationPhase"`
	VOscillationPhase     float64            `prop:"VOscillationPhase"`
	UOscillationAmplitude float64            `prop:"UOscillationAmplitude"`
	VOscillationAmplitude float64            `prop:"VOscillationAmplitude"`
	UOscillationType      TexOscillationType `prop:"UOscillationType"`
	VOscillationType      TexOscillationType `prop:"VOscillationType"`
	UOffset               float64            `prop:"UOffset"`
	VOffset               float64            `prop:"VOffset"`
}

// NewTexOscillator returns a TexOscillator with engine defaults.
func NewTexOscillator() *TexOscillator {
	return &TexOscillator{
		TexModifier:           newTexModifier(),
		UOscillationRate:      1,
		VOscillationRate:      1,
		UOscillationAmplitude: 0.1,
		VOscillationAmplitude: 0.1,
	}
}

// TypeName returns "TexOscillator".
func (*TexOscillator) TypeName() string { return "TexOscillator" }

// TexPanner pans coordinates at a constant rate.
type TexPanner struct {
	TexModifier
	PanDirection Rotator `prop:"PanDirection"`
	PanRate      float64 `prop:"PanRate"`
}

// NewTexPanner returns a TexPanner with engine defaults.
func NewTexPanner() *TexPanner {
	return &TexPanner{TexModifier: newTexModifier(), PanRate: 0.1}
}

// TypeName returns "TexPanner".
func (*TexPanner) TypeName() string { return "TexPanner" }

// TexRotator rotates coordinates around a pivot.
type TexRotator struct {
	TexModifier
	TexRotationType      TexRotationType `prop:"TexRotationType"`
	Rotation             Rotator         `prop:"Rotation"`
	ConstantRotation     bool            `prop:"ConstantRotation"`
	UOffset              float64         `prop:"UOffset"`
	VOffset              float64         `prop:"VOffset"`
	OscillationRate      Rotator         `prop:"OscillationRate"`
	OscillationAmplitude Rotator         `prop:"OscillationAmplitude"`
	OscillationPhase     Rotator         `prop:"OscillationPhase"`
}

// NewTexRotator returns a TexRotator with engine defaults.
func NewTexRotator() *TexRotator {
	return &TexRotator{TexModifier: newTexModifier()}
}

// TypeName returns "TexRotator".
func (*TexRotator) TypeName() string { return "TexRotator" }

// TexScaler scales coordinates around a pivot.
type TexScaler struct {
	TexModifier
	UScale  float64 `prop:"UScale"`
	VScale  float64 `prop:"VScale"`
	UOffset float64 `prop:"UOffset"`
	VOffset float64 `prop:"VOffset"`
}

// NewTexScaler returns a TexScaler with engine defaults.
func NewTexScaler() *TexScaler {
	return &TexScaler{TexModifier: newTexModifier(), UScale: 1, VScale: 1}
}

// TypeName returns "TexScaler".
func (*TexScaler) TypeName() string { return "TexScaler" }

// VariableTexPanner pans coordinates with a wall-clock driven rate.
type VariableTexPanner struct {
	TexModifier
	PanDirection Rotator `prop:"PanDirection"`
	PanRate      float64 `prop:"PanRate"`
}

// NewVariableTexPanner returns a VariableTexPanner with engine defaults.
func NewVariableTexPanner() *VariableTexPanner {
	return &VariableTexPanner{TexModifier: newTexModifier(), PanRate: 0.1}
}

// TypeName returns "VariableTexPanner".
func (*VariableTexPanner) TypeName() string { return "VariableTexPanner" }

// VertexColor outputs the mesh vertex color.
type VertexColor struct {
	MaterialBase
}

// NewVertexColor returns a VertexColor.
func NewVertexColor() *VertexColor { return &VertexColor{} }

// TypeName returns "VertexColor".
func (*VertexColor) TypeName() string { return "VertexColor" }

// MaterialSwitch selects one of several materials by index.
type MaterialSwitch struct {
	Modifier
	Current   int          `prop:"Current"`
	Materials []*Reference `prop:"Materials"`
}

// NewMaterialSwitch returns a MaterialSwitch with engine defaults.
func NewMaterialSwitch() *MaterialSwitch { return &MaterialSwitch{} }

// TypeName returns "MaterialSwitch".
func (*MaterialSwitch) TypeName() string { return "MaterialSwitch" }

// SequenceItem is one timed step of a MaterialSequence.
type SequenceItem struct {
	Material *Reference     `prop:"Material"`
	Time     float64        `prop:"Time"`
	Action   SequenceAction `prop:"Action"`
}

// MaterialSequence steps through materials over time.
type MaterialSequence struct {
	Modifier
	SequenceItems []SequenceItem `prop:"SequenceItems"`
	Loop          bool           `prop:"Loop"`
	Paused        bool           `prop:"Paused"`
	CurrentTime   float64        `prop:"CurrentTime"`
}

// NewMaterialSequence returns a MaterialSequence with engine defaults.
func NewMaterialSequence() *MaterialSequence { return &MaterialSequence{Loop: true} }

// TypeName returns "MaterialSequence".
func (*MaterialSequence) TypeName() string { return "MaterialSequence" }

// TotalTime returns the summed duration of all steps.
func (m *MaterialSequence) TotalTime() float64 {
	var total float64
	for _, it := range m.SequenceItems {
		total += it.Time
	}
	return total
}
