package archetype

import (
	"fmt"

	"github.com/chazu/reactorcad/pkg/component"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/shape"
)

// EUDemo is a simplified EU-DEMO (2015 baseline) with outlines digitised
// from the published machine cross-section. Coordinates are approximate.
type EUDemo struct {
	RotationAngle   float64 `yaml:"rotation_angle" json:"rotation_angle"`
	NumberOfTFCoils int     `yaml:"number_of_tf_coils" json:"number_of_tf_coils"`
}

// DefaultEUDemo returns the full machine with 16 TF coils.
func DefaultEUDemo() EUDemo {
	return EUDemo{RotationAngle: 360, NumberOfTFCoils: 16}
}

// Validate checks the rotation and coil count.
func (d EUDemo) Validate() error {
	const op = "archetype.EUDemo"
	if err := checkRotation(op, d.RotationAngle, false); err != nil {
		return err
	}
	if d.NumberOfTFCoils < 1 {
		return errdefs.Invalidf(op, "number_of_tf_coils must be at least 1, got %d", d.NumberOfTFCoils)
	}
	return nil
}

// Central solenoid stack, bottom to top, as r0, r1, z0, z1.
var demoSolenoid = [][4]float64{
	{263.609, 363.046, -881.622, -609.172},
	{266.203, 357.771, -600.848, -332.384},
	{263.561, 360.326, -316.037, 217.156},
	{262.230, 357.703, 229.491, 493.932},
	{261.015, 356.353, 510.278, 746.640},
}

var demoOutboardPF = profile.PFCoilSet{
	Centers: [][2]float64{{689, -985}, {1421, -689}, {1580, -252}, {1550, 293}, {1400, 598}, {621, 811}},
	Widths:  []float64{204, 141, 102, 95, 79, 121},
	Heights: []float64{204, 141, 102, 95, 79, 121},
}

// Shapes builds the EU-DEMO members.
func (d EUDemo) Shapes() ([]*shape.Shape, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	rot := d.RotationAngle
	c := component.Common{RotationAngle: rot}

	plasma, err := component.Plasma(profile.PlasmaFromPoints(1118, 677, [2]float64{853, 368}, profile.SingleNull), c)
	if err != nil {
		return nil, err
	}

	pfc := c
	pfc.Name, pfc.Material = "outboard_pf_coils", "outboard_pf_coils_mat"
	outboard, err := component.PFCoilSet(demoOutboardPF, pfc)
	if err != nil {
		return nil, err
	}
	out := []*shape.Shape{plasma, outboard}
	for i, r := range demoSolenoid {
		s, err := rect{
			name: fmt.Sprintf("pf_coils_%d", i+1), material: "pf_coils_mat",
			r0: r[0], r1: r[1], z0: r[2], z1: r[3],
		}.shape(rot, shape.Params{})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	revolve := func(name, material string, pts []geom.Point, p shape.Params) (*shape.Shape, error) {
		p.Name, p.Material, p.Points = name, material, pts
		p.Verb = shape.Revolve{Angle: rot}
		return shape.New(p)
	}
	divertor, err := revolve("divertor", "divertor_mat", demoDivertor, shape.Params{})
	if err != nil {
		return nil, err
	}
	blanket, err := revolve("blanket", "blanket_mat", demoBlanket, shape.Params{})
	if err != nil {
		return nil, err
	}
	// The inner vessel is a cutter only: the blanket and divertor fill it.
	inner, err := revolve("vacuum_vessel_inner", "vacuum_vessel_inner_mat", demoVesselInner,
		shape.Params{Union: []shape.Operand{blanket, divertor}})
	if err != nil {
		return nil, err
	}
	vessel, err := revolve("vacuum_vessel", "vacuum_vessel_mat", demoVessel,
		shape.Params{Cut: []shape.Operand{inner}})
	if err != nil {
		return nil, err
	}

	// Placement starts off zero so no coil straddles the sector faces.
	tc := c
	tc.Name, tc.Material = "tf_coil_casing", "tf_coil_casing_mat"
	tc.Placement = geom.Linspace(20, 380, d.NumberOfTFCoils, false)
	tc.Cut = []shape.Operand{inner, vessel}
	tc.Color = &[3]float64{1, 1, 0.498}
	casing, err := component.TFCoilPrincetonD(profile.TFCoilPrincetonD{
		R1:        486,
		R2:        1365,
		Thickness: 25,
	}, component.TFOptions{Distance: 200, NumberOfCoils: d.NumberOfTFCoils}, tc)
	if err != nil {
		return nil, err
	}

	return append(out, divertor, blanket, vessel, casing), nil
}

func spl(x, y float64) geom.Point { return geom.PK(x, y, geom.KindSpline) }
func str(x, y float64) geom.Point { return geom.PK(x, y, geom.KindStraight) }

var demoBlanket = []geom.Point{
	spl(1028.505, -506.439),
	spl(1192.276, -281.282),
	spl(1257.921, -56.438),
	spl(1244.834, 216.288),
	spl(1153.672, 400.516),
	spl(988.242, 520.325),
	spl(807.595, 539.803),
	spl(670.528, 475.183),
	spl(584.853, 334.513),
	spl(574.293, 81.767),
	spl(579.375, -158.895),
	str(580.359, -363.468),
	spl(686.296, -355.106),
	str(657.991, -182.711),
	str(657.413, -62.373),
	str(656.680, 90.054),
	spl(671.396, 294.677),
	spl(725.941, 379.089),
	spl(804.249, 419.453),
	spl(1036.133, 356.015),
	spl(1095.491, 255.923),
	spl(1127.489, 131.675),
	spl(1128.415, -60.864),
	spl(1082.086, -221.465),
	str(945.655, -418.456),
}

var demoDivertor = []geom.Point{
	str(580.359, -363.468),
	str(678.504, -367.165),
	str(698.206, -383.147),
	str(706.210, -415.212),
	str(698.495, -443.315),
	str(694.744, -479.429),
	str(690.876, -491.476),
	str(726.221, -495.374),
	str(745.692, -463.221),
	str(769.223, -459.134),
	str(788.886, -467.094),
	str(808.569, -479.065),
	str(863.867, -551.091),
	str(891.400, -563.037),
	str(895.170, -530.934),
	str(883.260, -502.893),
	str(886.992, -462.768),
	str(945.655, -418.456),
	str(1028.505, -506.439),
	str(985.889, -622.903),
	str(946.755, -647.097),
	str(801.529, -647.562),
	str(675.581, -575.762),
	str(612.376, -491.727),
	str(584.535, -415.601),
}

var demoVesselInner = []geom.Point{
	spl(574.127, 101.110),
	spl(578.248, 276.252),
	spl(576.216, 183.808),
	spl(574.691, 165.883),
	spl(592.984, 356.135),
	spl(618.390, 410.172),
	spl(660.057, 462.708),
	spl(711.886, 503.988),
	spl(763.714, 528.238),
	spl(800.808, 535.075),
	spl(957.819, 529.161),
	spl(1009.648, 511.730),
	spl(1061.477, 484.359),
	spl(1113.305, 445.674),
	spl(1160.053, 396.811),
	spl(1196.130, 343.453),
	spl(1221.536, 290.067),
	spl(1239.321, 234.977),
	spl(1251.516, 177.400),
	spl(1259.900, 119.152),
	spl(1262.898, 91.481),
	spl(1257.764, -69.664),
	spl(1248.467, -117.974),
	spl(1236.272, -162.391),
	spl(1219.504, -215.311),
	spl(1198.163, -267.656),
	spl(1171.740, -320.874),
	spl(1140.744, -372.278),
	spl(1102.635, -425.001),
	spl(1058.936, -476.293),
	spl(1022.859, -523.164),
	spl(998.469, -582.323),
	spl(961.884, -633.832),
	spl(788.104, -641.842),
	spl(746.438, -626.405),
	spl(694.609, -595.170),
	spl(646.337, -549.175),
	spl(610.768, -496.433),
	spl(588.919, -442.352),
	spl(578.147, -383.498),
	spl(577.699, -343.842),
	spl(576.216, -254.966),
	spl(576.216, -201.971),
	spl(576.216, -148.975),
	spl(576.216, -95.979),
}

var demoVessel = []geom.Point{
	spl(515.495, 96.835),
	spl(515.495, 142.762),
	spl(515.821, 194.681),
	spl(518.012, 287.541),
	spl(532.009, 362.378),
	spl(553.350, 416.546),
	spl(586.378, 470.348),
	spl(631.602, 520.045),
	spl(683.430, 557.882),
	spl(735.259, 582.920),
	spl(785.056, 596.533),
	spl(975.095, 588.576),
	spl(1026.924, 570.657),
	spl(1078.753, 545.285),
	spl(1130.582, 510.377),
	spl(1181.923, 463.908),
	spl(1225.573, 410.040),
	spl(1258.121, 357.038),
	spl(1283.020, 304.733),
	spl(1302.328, 252.005),
	spl(1316.556, 198.482),
	spl(1326.958, 139.397),
	spl(1333.093, 100.847),
	spl(1343.487, -64.805),
	spl(1336.086, -109.344),
	spl(1327.344, -183.203),
	spl(1318.017, -232.478),
	spl(1302.837, -287.561),
	spl(1285.560, -341.500),
	spl(1263.711, -396.825),
	spl(1237.288, -451.744),
	spl(1207.309, -505.037),
	spl(1172.756, -556.014),
	spl(1128.041, -612.403),
	spl(1076.720, -658.257),
	spl(1024.891, -689.932),
	spl(973.063, -711.781),
	spl(799.791, -721.927),
	spl(771.844, -713.390),
	spl(720.016, -692.618),
	spl(668.674, -662.281),
	spl(617.902, -618.110),
	spl(575.708, -565.768),
	spl(546.744, -511.787),
	spl(524.946, -451.305),
	spl(516.749, -393.526),
	spl(516.749, -334.633),
	spl(516.749, -281.637),
	spl(516.749, -228.642),
	spl(516.749, -175.646),
	spl(516.749, -107.409),
}
