package constants

// axis names
const Vector = "vector"
const Illumination = "illumination"
const Flat = "flat"
const CrossSection = "cross_section"
const Epar = "Epar"
const Eperp = "Eperp"

var VectorComponents = [3]string{"x", "y", "z"}
var EparLabels = [2]string{"S2", "S3"}
var EperpLabels = [2]string{"S4", "S1"}
var CrossSectionLabels = [4]string{"scattering", "absorption", "extinction", "asymmetry"}

const DefaultMediumIndex = 1.33
const DefaultWavelen = 0.66 // [um]
