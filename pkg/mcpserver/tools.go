package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Bibi40k/vsphere-mcp/pkg/vmops"
)

func (s *Server) registerTools() {
	s.mcp.AddTools(
		server.ServerTool{
			Tool: mcp.NewTool("list_vms",
				mcp.WithDescription("List the names of all virtual machines"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.listVMs,
		},
		server.ServerTool{
			Tool: mcp.NewTool("find_vm_by_mac",
				mcp.WithDescription("Find the virtual machine owning a network adapter MAC address"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("mac_address", mcp.Required(),
					mcp.Description("MAC address in any common notation, e.g. 00:50:56:aa:bb:cc")),
			),
			Handler: s.findVMByMAC,
		},
		server.ServerTool{
			Tool: mcp.NewTool("create_vm",
				mcp.WithDescription("Create a virtual machine with a thin disk and an optional network adapter"),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("name", mcp.Required(), mcp.Description("Name of the new VM")),
				mcp.WithNumber("cpu", mcp.Required(), mcp.Min(1), mcp.Description("Number of virtual CPUs")),
				mcp.WithNumber("memory", mcp.Required(), mcp.Min(4), mcp.Description("Memory in MB")),
				mcp.WithString("datastore", mcp.Description("Datastore name; defaults to the configured datastore")),
				mcp.WithString("network", mcp.Description("Network name; defaults to the configured network")),
			),
			Handler: s.createVM,
		},
		server.ServerTool{
			Tool: mcp.NewTool("clone_vm",
				mcp.WithDescription("Clone a virtual machine or template"),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("template_name", mcp.Required(), mcp.Description("Source VM or template")),
				mcp.WithString("new_name", mcp.Required(), mcp.Description("Name of the clone")),
			),
			Handler: s.cloneVM,
		},
		server.ServerTool{
			Tool: mcp.NewTool("delete_vm",
				mcp.WithDescription("Destroy a virtual machine and its disks"),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithString("name", mcp.Required(), mcp.Description("VM name")),
			),
			Handler: s.deleteVM,
		},
		server.ServerTool{
			Tool: mcp.NewTool("power_on",
				mcp.WithDescription("Power on a virtual machine"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("name", mcp.Required(), mcp.Description("VM name")),
			),
			Handler: s.powerOn,
		},
		server.ServerTool{
			Tool: mcp.NewTool("power_off",
				mcp.WithDescription("Power off a virtual machine"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("name", mcp.Required(), mcp.Description("VM name")),
			),
			Handler: s.powerOff,
		},
		server.ServerTool{
			Tool: mcp.NewTool("get_vm_stats",
				mcp.WithDescription("Get CPU, memory, storage and network statistics of a virtual machine"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("vm_name", mcp.Required(), mcp.Description("VM name")),
			),
			Handler: s.getVMStats,
		},
		server.ServerTool{
			Tool: mcp.NewTool("list_datastores",
				mcp.WithDescription("List datastores with capacity and free space"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.listDatastores,
		},
		server.ServerTool{
			Tool: mcp.NewTool("list_networks",
				mcp.WithDescription("List networks and distributed port groups"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.listNetworks,
		},
	)
}

// bind decodes the call arguments into target, reporting failures as a tool
// error result.
func bind(req mcp.CallToolRequest, target any) *mcp.CallToolResult {
	if req.Params.Arguments == nil {
		return nil
	}
	if err := req.BindArguments(target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err))
	}
	return nil
}

func textResult(text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func jsonResult[T any](v T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return res, nil
}

type nameArgs struct {
	Name string `json:"name"`
}

func (s *Server) listVMs(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.ops.ListVMs(ctx)
	if names == nil {
		names = []string{}
	}
	return jsonResult(names, err)
}

func (s *Server) findVMByMAC(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		MAC string `json:"mac_address"`
	}
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.FindVMByMAC(ctx, args.MAC))
}

func (s *Server) createVM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args vmops.CreateRequest
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.CreateVM(ctx, args))
}

func (s *Server) cloneVM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Template string `json:"template_name"`
		NewName  string `json:"new_name"`
	}
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.CloneVM(ctx, args.Template, args.NewName))
}

func (s *Server) deleteVM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args nameArgs
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.DeleteVM(ctx, args.Name))
}

func (s *Server) powerOn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args nameArgs
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.PowerOn(ctx, args.Name))
}

func (s *Server) powerOff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args nameArgs
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	return textResult(s.ops.PowerOff(ctx, args.Name))
}

func (s *Server) getVMStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Name string `json:"vm_name"`
	}
	if res := bind(req, &args); res != nil {
		return res, nil
	}
	st, err := s.ops.GetVMStats(ctx, args.Name)
	return jsonResult(st, err)
}

func (s *Server) listDatastores(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.ops.ListDatastores(ctx)
	return jsonResult(list, err)
}

func (s *Server) listNetworks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.ops.ListNetworks(ctx)
	return jsonResult(list, err)
}
