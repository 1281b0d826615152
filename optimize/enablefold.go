package optimize

import "github.com/synogate/gatery/hlim"

// RegisterMuxEnableFold rewrites the self-feedback mux pattern
// reg(D = mux(c, reg, X)) into reg(D = X, EN = EN_old AND c) (and the
// symmetric case, with a NOT node, when the register is the *true*
// branch instead of the false one), so retiming and export don't have
// to reason about a register feeding its own data input (spec.md §4.3
// "Register/mux enable fold"; grounded on
// original_source/.../Circuit.cpp's foldRegisterMuxEnableLoops).
func RegisterMuxEnableFold(c *hlim.Circuit) error {
	for _, n := range c.Nodes() {
		if n.Kind() != hlim.KindRegister {
			continue
		}
		dataDriver := nonSignalDriver(c, n.Inputs[hlim.RegData].Driver)
		muxNode := c.Node(dataDriver.Node)
		if muxNode == nil || muxNode.Kind() != hlim.KindMux || hlim.NumDataInputs(muxNode) != 2 {
			continue
		}
		muxCond := muxNode.Inputs[hlim.MuxSelector].Driver
		falseBranch := nonSignalDriver(c, muxNode.Inputs[1].Driver)
		trueBranch := nonSignalDriver(c, muxNode.Inputs[2].Driver)
		oldEnable := n.Inputs[hlim.RegEnable].Driver

		switch {
		case falseBranch.Node == n.Id() && falseBranch.Port == 0:
			newEnable, err := andWith(c, n, oldEnable, muxCond)
			if err != nil {
				return err
			}
			if err := c.ConnectInput(n, hlim.RegEnable, newEnable); err != nil {
				return err
			}
			if err := c.ConnectInput(n, hlim.RegData, muxNode.Inputs[2].Driver); err != nil {
				return err
			}
		case trueBranch.Node == n.Id() && trueBranch.Port == 0:
			notNode := c.NewLogic(hlim.OpNot, 1)
			n.Group().MoveNode(notNode)
			if err := c.ConnectInput(notNode, 0, muxCond); err != nil {
				return err
			}
			newEnable, err := andWith(c, n, oldEnable, hlim.NodePort{Node: notNode.Id(), Port: 0})
			if err != nil {
				return err
			}
			if err := c.ConnectInput(n, hlim.RegEnable, newEnable); err != nil {
				return err
			}
			if err := c.ConnectInput(n, hlim.RegData, muxNode.Inputs[1].Driver); err != nil {
				return err
			}
		}
	}
	return nil
}

// andWith returns cond unchanged if the register had no prior enable,
// or a fresh AND(oldEnable, cond) node in the register's group
// otherwise, preserving the original enable conjunctively.
func andWith(c *hlim.Circuit, reg *hlim.Node, oldEnable, cond hlim.NodePort) (hlim.NodePort, error) {
	if !oldEnable.Valid() {
		return cond, nil
	}
	andNode := c.NewLogic(hlim.OpAnd, 1)
	reg.Group().MoveNode(andNode)
	if err := c.ConnectInput(andNode, 0, oldEnable); err != nil {
		return hlim.NodePort{}, err
	}
	if err := c.ConnectInput(andNode, 1, cond); err != nil {
		return hlim.NodePort{}, err
	}
	return hlim.NodePort{Node: andNode.Id(), Port: 0}, nil
}
