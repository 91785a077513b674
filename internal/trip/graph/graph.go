package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-trip-planner/server/internal/trip/conversations"
	"github.com/Chative-trip-planner/server/internal/trip/graph/nodes"
	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/tools"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

// GraphConfig holds all configuration needed to build the turn graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Dispatcher      *tools.Dispatcher
}

// GraphBuilder handles the construction of the conversation turn graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.TurnContext, *model.TurnOutput]
}

// BuildGraph constructs and returns the compiled turn graph:
//
//	ContextLoader -> AssistantModel -> ToolDispatcher -> SummaryModel -> Finalizer
//	                               \-------------------------------------/
//
// The tool round trip happens at most once per turn.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.TurnContext, *model.TurnOutput], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Assistant == nil || config.ChatModels.Summary == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Dispatcher == nil {
		return nil, fmt.Errorf("tool dispatcher is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[*model.TurnContext, *model.TurnOutput](
			compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
				return &model.TurnState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	cms := b.config.ChatModels
	mm := b.config.MessagesManager

	steps := []struct {
		name string
		add  func() error
	}{
		{nodes.NodeContextLoader, func() error {
			return b.graph.AddLambdaNode(nodes.NodeContextLoader,
				nodes.NewContextLoaderNode(mm),
				compose.WithStatePreHandler(nodes.NewContextLoaderPreHandler()),
			)
		}},
		{nodes.NodeAssistantModel, func() error {
			return b.graph.AddChatModelNode(nodes.NodeAssistantModel,
				cms.Assistant,
				compose.WithStatePostHandler(nodes.NewAssistantModelPostHandler(cms.AssistantModelName)),
			)
		}},
		{nodes.NodeToolDispatcher, func() error {
			return b.graph.AddLambdaNode(nodes.NodeToolDispatcher, nodes.NewToolDispatcherNode(mm, b.config.Dispatcher))
		}},
		{nodes.NodeSummaryModel, func() error {
			return b.graph.AddLambdaNode(nodes.NodeSummaryModel, nodes.NewSummaryNode(cms.Summary, cms.SummaryModelName))
		}},
		{nodes.NodeFinalizer, func() error {
			return b.graph.AddLambdaNode(nodes.NodeFinalizer, nodes.NewFinalizerNode(mm))
		}},
	}

	for _, step := range steps {
		if err := step.add(); err != nil {
			logx.Error().Err(err).Str("node", step.name).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", step.name, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeContextLoader},
		{nodes.NodeContextLoader, nodes.NodeAssistantModel},
		{nodes.NodeToolDispatcher, nodes.NodeSummaryModel},
		{nodes.NodeSummaryModel, nodes.NodeFinalizer},
		{nodes.NodeFinalizer, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	toolBranch := compose.NewGraphBranch(
		nodes.NewToolRouteCondition(),
		map[string]bool{
			nodes.NodeToolDispatcher: true,
			nodes.NodeFinalizer:      true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeAssistantModel, toolBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool branch")
		return fmt.Errorf("error adding tool branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.TurnContext, *model.TurnOutput], error) {
	// Five nodes on the longest path; the bound only guards against a
	// miswired loop.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10), compose.WithGraphName("TripTurn"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
